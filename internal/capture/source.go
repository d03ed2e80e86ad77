package capture

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.bug.st/serial"
	"nhooyr.io/websocket"
)

// Kind identifies how a source is read
type Kind string

const (
	KindTCP       Kind = "tcp"
	KindUDP       Kind = "udp"
	KindSerial    Kind = "serial"
	KindWebSocket Kind = "ws"

	DefaultBaudRate = 38400
)

// Source is one parsed entry of the SOURCES list
type Source struct {
	Raw     string
	Kind    Kind
	Address string
	Baud    int
}

func (s Source) String() string {
	return s.Raw
}

// ParseSource parses a source URI. A bare host:port is a TCP source.
func ParseSource(raw string) (Source, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Source{}, fmt.Errorf("empty source")
	}
	if !strings.Contains(raw, "://") {
		if _, _, err := net.SplitHostPort(raw); err != nil {
			return Source{}, fmt.Errorf("invalid source %q: %w", raw, err)
		}
		return Source{Raw: raw, Kind: KindTCP, Address: raw}, nil
	}

	u, err := url.Parse(raw)
	if err != nil {
		return Source{}, fmt.Errorf("invalid source %q: %w", raw, err)
	}

	switch u.Scheme {
	case "tcp":
		if u.Host == "" {
			return Source{}, fmt.Errorf("source %q has no address", raw)
		}
		return Source{Raw: raw, Kind: KindTCP, Address: u.Host}, nil
	case "udp":
		if u.Host == "" {
			return Source{}, fmt.Errorf("source %q has no address", raw)
		}
		return Source{Raw: raw, Kind: KindUDP, Address: u.Host}, nil
	case "serial":
		if u.Path == "" {
			return Source{}, fmt.Errorf("source %q has no device", raw)
		}
		baud := DefaultBaudRate
		if b := u.Query().Get("baud"); b != "" {
			baud, err = strconv.Atoi(b)
			if err != nil || baud <= 0 {
				return Source{}, fmt.Errorf("invalid baud rate %q in %q", b, raw)
			}
		}
		return Source{Raw: raw, Kind: KindSerial, Address: u.Path, Baud: baud}, nil
	case "ws", "wss":
		return Source{Raw: raw, Kind: KindWebSocket, Address: raw}, nil
	default:
		return Source{}, fmt.Errorf("unsupported source scheme %q", u.Scheme)
	}
}

// ParseSources parses a comma separated SOURCES value, skipping blanks
func ParseSources(list string) ([]Source, error) {
	var sources []Source
	for _, entry := range strings.Split(list, ",") {
		if strings.TrimSpace(entry) == "" {
			continue
		}
		src, err := ParseSource(entry)
		if err != nil {
			return nil, err
		}
		sources = append(sources, src)
	}
	return sources, nil
}

// Dial opens a source for reading
func Dial(ctx context.Context, src Source) (io.ReadCloser, error) {
	switch src.Kind {
	case KindTCP:
		d := net.Dialer{Timeout: 10 * time.Second}
		conn, err := d.DialContext(ctx, "tcp", src.Address)
		if err != nil {
			return nil, err
		}
		configureTCPKeepalive(conn, src.Raw)
		return conn, nil
	case KindUDP:
		addr, err := net.ResolveUDPAddr("udp", src.Address)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve address: %w", err)
		}
		conn, err := net.ListenUDP("udp", addr)
		if err != nil {
			return nil, err
		}
		return conn, nil
	case KindSerial:
		return serial.Open(src.Address, &serial.Mode{BaudRate: src.Baud})
	case KindWebSocket:
		c, _, err := websocket.Dial(ctx, src.Address, nil)
		if err != nil {
			return nil, err
		}
		return websocket.NetConn(context.Background(), c, websocket.MessageText), nil
	default:
		return nil, fmt.Errorf("unsupported source kind %q", src.Kind)
	}
}
