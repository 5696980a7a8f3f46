package consensus

import "strings"

// Hand-rolled Bech32m address codec (§3.6), following BIP-350's checksum
// constant over BIP-173's original data-part encoding. No pack dependency
// implements Bech32m with real source, so this is written directly against
// the reference algorithm the way the teacher hand-rolls its own wire codec
// rather than reaching for a third-party parser.

const bech32Charset = "qpzry9x8gf2tvdw0s3jn54khce6mua7l"

const bech32mConst = 0x2bc830a3

// Network selects the HRP used for address encoding/decoding.
type Network int

const (
	Mainnet Network = iota
	Testnet
)

func (n Network) hrp() (string, error) {
	switch n {
	case Mainnet:
		return "rill", nil
	case Testnet:
		return "trill", nil
	default:
		return "", addrErr(ErrUnknownNetwork, "unrecognized network")
	}
}

func networkForHRP(hrp string) (Network, error) {
	switch hrp {
	case "rill":
		return Mainnet, nil
	case "trill":
		return Testnet, nil
	default:
		return 0, addrErr(ErrInvalidHrp, "unrecognized hrp: "+hrp)
	}
}

func polymod(values []byte) uint32 {
	gen := [5]uint32{0x3b6a57b2, 0x26508e6d, 0x1ea119fa, 0x3d4233dd, 0x2a1462b3}
	chk := uint32(1)
	for _, v := range values {
		b := byte(chk >> 25)
		chk = (chk&0x1ffffff)<<5 ^ uint32(v)
		for i := 0; i < 5; i++ {
			if (b>>uint(i))&1 == 1 {
				chk ^= gen[i]
			}
		}
	}
	return chk
}

func hrpExpand(hrp string) []byte {
	out := make([]byte, 0, len(hrp)*2+1)
	for _, c := range hrp {
		out = append(out, byte(c)>>5)
	}
	out = append(out, 0)
	for _, c := range hrp {
		out = append(out, byte(c)&31)
	}
	return out
}

func createChecksum(hrp string, data []byte) []byte {
	values := append(hrpExpand(hrp), data...)
	values = append(values, 0, 0, 0, 0, 0, 0)
	mod := polymod(values) ^ bech32mConst
	checksum := make([]byte, 6)
	for i := 0; i < 6; i++ {
		checksum[i] = byte((mod >> uint(5*(5-i))) & 31)
	}
	return checksum
}

func verifyChecksum(hrp string, data []byte) bool {
	return polymod(append(hrpExpand(hrp), data...)) == bech32mConst
}

// convertBits repacks a slice of fromBits-wide groups into toBits-wide groups.
func convertBits(data []byte, fromBits, toBits uint, pad bool) ([]byte, error) {
	var acc uint32
	var bits uint
	var out []byte
	maxv := uint32(1)<<toBits - 1
	for _, value := range data {
		if uint32(value)>>fromBits != 0 {
			return nil, addrErr(ErrInvalidCharacter, "value exceeds fromBits width")
		}
		acc = (acc << fromBits) | uint32(value)
		bits += fromBits
		for bits >= toBits {
			bits -= toBits
			out = append(out, byte((acc>>bits)&maxv))
		}
	}
	if pad {
		if bits > 0 {
			out = append(out, byte((acc<<(toBits-bits))&maxv))
		}
	} else if bits >= fromBits || (acc<<(toBits-bits))&maxv != 0 {
		return nil, addrErr(ErrInvalidPadding, "non-zero padding bits")
	}
	return out, nil
}

// EncodeAddress produces the Bech32m string for a pubkey hash on the given
// network: version byte 0 followed by the 32-byte payload.
func EncodeAddress(net Network, pubkeyHash Hash256) (string, error) {
	hrp, err := net.hrp()
	if err != nil {
		return "", err
	}
	payload := append([]byte{0}, pubkeyHash[:]...)
	data, err := convertBits(payload, 8, 5, true)
	if err != nil {
		return "", err
	}
	checksum := createChecksum(hrp, data)
	combined := append(data, checksum...)

	var sb strings.Builder
	sb.WriteString(hrp)
	sb.WriteByte('1')
	for _, b := range combined {
		sb.WriteByte(bech32Charset[b])
	}
	return sb.String(), nil
}

// DecodeAddress parses and fully validates a Bech32m address, returning its
// network and 32-byte pubkey hash.
func DecodeAddress(addr string) (Network, Hash256, error) {
	var zero Hash256

	hasLower := strings.ToLower(addr) != addr
	hasUpper := strings.ToUpper(addr) != addr
	if hasLower && hasUpper {
		return 0, zero, addrErr(ErrMixedCase, "address mixes upper and lower case")
	}
	lower := strings.ToLower(addr)

	sep := strings.LastIndexByte(lower, '1')
	if sep < 1 || sep+7 > len(lower) {
		return 0, zero, addrErr(ErrMissingSeparator, "missing or misplaced separator")
	}
	hrp := lower[:sep]
	dataPart := lower[sep+1:]

	net, err := networkForHRP(hrp)
	if err != nil {
		return 0, zero, err
	}

	data := make([]byte, len(dataPart))
	for i := 0; i < len(dataPart); i++ {
		idx := strings.IndexByte(bech32Charset, dataPart[i])
		if idx < 0 {
			return 0, zero, addrErr(ErrInvalidCharacter, "invalid bech32 character")
		}
		data[i] = byte(idx)
	}

	if !verifyChecksum(hrp, data) {
		return 0, zero, addrErr(ErrInvalidChecksum, "checksum mismatch")
	}
	payload5 := data[:len(data)-6]

	payload, err := convertBits(payload5, 5, 8, false)
	if err != nil {
		return 0, zero, addrErr(ErrInvalidPadding, err.Error())
	}
	if len(payload) != 33 {
		return 0, zero, addrErr(ErrInvalidLength, "payload is not version byte + 32 bytes")
	}
	if payload[0] != 0 {
		return 0, zero, addrErr(ErrInvalidVersion, "unsupported address version")
	}

	var out Hash256
	copy(out[:], payload[1:])
	return net, out, nil
}
