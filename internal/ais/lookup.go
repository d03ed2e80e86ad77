package ais

// NavigationStatus is the Class A navigational status (0-15).
type NavigationStatus uint8

// String returns the status label.
func (s NavigationStatus) String() string {
	return NavigationStatusLabel(uint8(s))
}

// NavigationStatusMap holds the navigational status labels.
var NavigationStatusMap = map[uint8]string{
	0:  "Under way using engine",
	1:  "At anchor",
	2:  "Not under command",
	3:  "Restricted manoeuvrability",
	4:  "Constrained by her draught",
	5:  "Moored",
	6:  "Aground",
	7:  "Engaged in fishing",
	8:  "Under way sailing",
	9:  "Reserved for HSC",
	10: "Reserved for WIG",
	11: "Power-driven vessel towing astern",
	12: "Power-driven vessel pushing ahead or towing alongside",
	13: "Reserved",
	14: "AIS-SART active",
	15: "Not defined",
}

// VesselTypeMap holds the ship and cargo type labels.
var VesselTypeMap = map[uint8]string{
	0:  "Not available",
	1:  "Reserved",
	2:  "Reserved",
	3:  "Reserved",
	4:  "Reserved",
	5:  "Reserved",
	6:  "Reserved",
	7:  "Reserved",
	8:  "Reserved",
	9:  "Reserved",
	10: "Reserved",
	11: "Reserved",
	12: "Reserved",
	13: "Reserved",
	14: "Reserved",
	15: "Reserved",
	16: "Reserved",
	17: "Reserved",
	18: "Reserved",
	19: "Reserved",
	20: "Wing in ground",
	21: "Wing in ground, Hazardous category A",
	22: "Wing in ground, Hazardous category B",
	23: "Wing in ground, Hazardous category C",
	24: "Wing in ground, Hazardous category D",
	25: "Wing in ground, Reserved",
	26: "Wing in ground, Reserved",
	27: "Wing in ground, Reserved",
	28: "Wing in ground, Reserved",
	29: "Wing in ground, No additional information",
	30: "Fishing",
	31: "Towing",
	32: "Towing, length exceeds 200m or breadth exceeds 25m",
	33: "Dredging or underwater operations",
	34: "Diving operations",
	35: "Military operations",
	36: "Sailing",
	37: "Pleasure craft",
	38: "Reserved",
	39: "Reserved",
	40: "High speed craft",
	41: "High speed craft, Hazardous category A",
	42: "High speed craft, Hazardous category B",
	43: "High speed craft, Hazardous category C",
	44: "High speed craft, Hazardous category D",
	45: "High speed craft, Reserved",
	46: "High speed craft, Reserved",
	47: "High speed craft, Reserved",
	48: "High speed craft, Reserved",
	49: "High speed craft, No additional information",
	50: "Pilot vessel",
	51: "Search and rescue vessel",
	52: "Tug",
	53: "Port tender",
	54: "Anti-pollution equipment",
	55: "Law enforcement",
	56: "Spare, Local vessel",
	57: "Spare, Local vessel",
	58: "Medical transport",
	59: "Noncombatant ship",
	60: "Passenger",
	61: "Passenger, Hazardous category A",
	62: "Passenger, Hazardous category B",
	63: "Passenger, Hazardous category C",
	64: "Passenger, Hazardous category D",
	65: "Passenger, Reserved",
	66: "Passenger, Reserved",
	67: "Passenger, Reserved",
	68: "Passenger, Reserved",
	69: "Passenger, No additional information",
	70: "Cargo",
	71: "Cargo, Hazardous category A",
	72: "Cargo, Hazardous category B",
	73: "Cargo, Hazardous category C",
	74: "Cargo, Hazardous category D",
	75: "Cargo, Reserved",
	76: "Cargo, Reserved",
	77: "Cargo, Reserved",
	78: "Cargo, Reserved",
	79: "Cargo, No additional information",
	80: "Tanker",
	81: "Tanker, Hazardous category A",
	82: "Tanker, Hazardous category B",
	83: "Tanker, Hazardous category C",
	84: "Tanker, Hazardous category D",
	85: "Tanker, Reserved",
	86: "Tanker, Reserved",
	87: "Tanker, Reserved",
	88: "Tanker, Reserved",
	89: "Tanker, No additional information",
	90: "Other type",
	91: "Other type, Hazardous category A",
	92: "Other type, Hazardous category B",
	93: "Other type, Hazardous category C",
	94: "Other type, Hazardous category D",
	95: "Other type, Reserved",
	96: "Other type, Reserved",
	97: "Other type, Reserved",
	98: "Other type, Reserved",
	99: "Other type, No additional information",
}

// NavigationStatusLabel returns the label for a status code, or "Unknown".
func NavigationStatusLabel(code uint8) string {
	if label, ok := NavigationStatusMap[code]; ok {
		return label
	}
	return "Unknown"
}

// VesselTypeLabel returns the label for a ship type code, or "Unknown".
func VesselTypeLabel(code uint8) string {
	if label, ok := VesselTypeMap[code]; ok {
		return label
	}
	return "Unknown"
}
