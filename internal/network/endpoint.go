package network

import (
	"fmt"
	"net"
	"strconv"
	"strings"
)

// Endpoint is the remote side of the session as reported by sshd in
// SSH_CLIENT: "<address> <client port> <server port>".
type Endpoint struct {
	Address    string
	ClientPort string
	ServerPort string
}

// ParseEndpoint parses the three whitespace-separated tokens of s.
// Tokens past the third are ignored.
func ParseEndpoint(s string) (Endpoint, error) {
	fields := strings.Fields(s)
	if len(fields) < 3 {
		return Endpoint{}, fmt.Errorf("malformed remote endpoint %q: expected address and two ports", s)
	}

	ep := Endpoint{
		Address:    fields[0],
		ClientPort: fields[1],
		ServerPort: fields[2],
	}

	if net.ParseIP(ep.Address) == nil {
		return Endpoint{}, fmt.Errorf("malformed remote endpoint %q: invalid address %q", s, ep.Address)
	}
	for _, port := range []string{ep.ClientPort, ep.ServerPort} {
		n, err := strconv.Atoi(port)
		if err != nil || n < 0 || n > 65535 {
			return Endpoint{}, fmt.Errorf("malformed remote endpoint %q: invalid port %q", s, port)
		}
	}

	return ep, nil
}

func (e Endpoint) String() string {
	return net.JoinHostPort(e.Address, e.ClientPort)
}
