package ais

import (
	"strconv"
	"strings"
)

// Envelope is the NMEA0183 framing around an armored AIS payload.
type Envelope struct {
	Tag            string
	FragmentCount  int
	FragmentNumber int
	SequenceID     string
	Channel        string
	Payload        string
	FillBits       int
}

// ParseEnvelope splits a raw !AIVDM/!AIVDO sentence into its fields.
// The checksum is not validated.
func ParseEnvelope(sentence string) (*Envelope, error) {
	fields := strings.Split(strings.TrimSpace(sentence), ",")
	if len(fields) < 6 {
		return nil, ErrMalformedSentence
	}

	env := &Envelope{
		Tag:            fields[0],
		FragmentCount:  atoi(fields[1]),
		FragmentNumber: atoi(fields[2]),
		SequenceID:     fields[3],
		Channel:        fields[4],
		Payload:        beforeChecksum(fields[5]),
	}
	if len(fields) > 6 {
		env.FillBits = atoi(beforeChecksum(fields[6]))
	}

	if env.Payload == "" {
		return nil, ErrEmptyPayload
	}
	return env, nil
}

// Multipart reports whether the sentence is one fragment of a larger message.
func (e *Envelope) Multipart() bool {
	return e.FragmentCount > 1
}

func beforeChecksum(field string) string {
	if i := strings.IndexByte(field, '*'); i >= 0 {
		return field[:i]
	}
	return field
}

// atoi parses leniently, treating anything unparsable as 0.
func atoi(s string) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return n
}
