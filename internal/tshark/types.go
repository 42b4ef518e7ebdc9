package tshark

// EkPacket represents the top-level structure of a Tshark -T ek output line.
type EkPacket struct {
	Timestamp string   `json:"timestamp"` // epoch milliseconds
	Layers    EkLayers `json:"layers"`
}

// EkLayers holds the fields requested with -e.
// When using -e flags with -T ek, tshark flattens the structure and replaces dots with underscores.
type EkLayers struct {
	IPSrc   []string `json:"ip_src,omitempty"`
	IPDst   []string `json:"ip_dst,omitempty"`
	IPProto []string `json:"ip_proto,omitempty"`

	// Payload of an IP protocol tshark has no dissector for, as hex.
	Data []string `json:"data_data,omitempty"`
}
