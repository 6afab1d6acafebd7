package api

const redacted = "[REDACTED]"

// credential keeps a token out of logs and formatted output.
type credential string

func (c credential) header() string {
	return "Bearer " + string(c)
}

func (c credential) String() string {
	if c == "" {
		return ""
	}

	return redacted
}

func (c credential) GoString() string {
	return c.String()
}

func (c credential) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}
