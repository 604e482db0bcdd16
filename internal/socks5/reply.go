package socks5

import (
	"encoding/binary"
	"fmt"
	"io"
	"net/netip"
)

// Reply is a parsed CONNECT reply.
type Reply struct {
	Version  byte // VER; always 5 once parsed
	Status   byte // REP
	Reserved byte // RSV
	AddrType byte // ATYP of the bound address
	Bound    netip.AddrPort
}

// parseReplyHeader validates VER REP RSV. A non-zero REP short-circuits with
// a *ServerError before RSV is looked at.
func parseReplyHeader(hdr [3]byte) error {
	if hdr[0] != Version {
		return fmt.Errorf("%w: got %d", ErrBadVersion, hdr[0])
	}
	if hdr[1] != RepSuccess {
		return &ServerError{Code: hdr[1]}
	}
	if hdr[2] != 0x00 {
		return fmt.Errorf("%w: got 0x%02x", ErrMalformedReply, hdr[2])
	}
	return nil
}

// ReadReply reads a CONNECT reply from r. On failure status the bound address
// tail is left unread. Only IPv4 bound addresses are accepted; other address
// types fail with ErrUnsupportedAddressType.
func ReadReply(r io.Reader) (*Reply, error) {
	var hdr [3]byte
	if _, err := io.ReadFull(r, hdr[:]); err != nil {
		return nil, &TransportError{Op: "read reply", Err: err}
	}
	if err := parseReplyHeader(hdr); err != nil {
		return nil, err
	}

	rep := &Reply{Version: hdr[0], Status: hdr[1], Reserved: hdr[2]}

	var atyp [1]byte
	if _, err := io.ReadFull(r, atyp[:]); err != nil {
		return nil, &TransportError{Op: "read reply address type", Err: err}
	}
	rep.AddrType = atyp[0]

	if rep.AddrType != AddrTypeIPv4 {
		return nil, fmt.Errorf("%w: 0x%02x", ErrUnsupportedAddressType, rep.AddrType)
	}

	var tail [6]byte
	if _, err := io.ReadFull(r, tail[:]); err != nil {
		return nil, &TransportError{Op: "read reply bound address", Err: err}
	}
	rep.Bound = netip.AddrPortFrom(netip.AddrFrom4([4]byte(tail[:4])), binary.BigEndian.Uint16(tail[4:]))

	return rep, nil
}

func (r *Reply) String() string {
	return fmt.Sprintf("SOCKS5 Reply{Version=%d, Status=%d, Bound=%s}", r.Version, r.Status, r.Bound)
}
