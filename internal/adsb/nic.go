package adsb

// NICForTypeCode maps an airborne position type code to its Navigation
// Integrity Category. Codes outside the airborne position range map to 0.
func NICForTypeCode(tc uint8) uint8 {
	switch tc {
	case 9:
		return 11
	case 10:
		return 10
	case 11:
		return 9
	case 12:
		return 7
	case 13:
		return 6
	case 14:
		return 5
	case 15:
		return 4
	case 16:
		return 3
	case 17:
		return 2
	case 18:
		return 0
	case 20:
		return 11
	case 21:
		return 10
	case 22:
		return 0
	default:
		return 0
	}
}

// typeCodeForNIC is the encoder-side inverse of NICForTypeCode for
// barometric position frames. NIC values with no exact type code (1, 8)
// fall back to type code 18 (NIC 0).
func typeCodeForNIC(nic uint8) uint8 {
	switch nic {
	case 11:
		return 9
	case 10:
		return 10
	case 9:
		return 11
	case 7:
		return 12
	case 6:
		return 13
	case 5:
		return 14
	case 4:
		return 15
	case 3:
		return 16
	case 2:
		return 17
	default:
		return 18
	}
}
