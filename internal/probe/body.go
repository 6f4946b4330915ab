package probe

import (
	"bufio"
	"io"
	"mime"
	"strings"

	"golang.org/x/net/html/charset"
)

// readBody decodes body and keeps at most maxChars characters. Reading stops
// as soon as one more character is seen; the rest of the stream is left
// unread for the caller to abandon. Undecodable or incomplete trailing
// bytes are emitted as U+FFFD.
func readBody(body io.Reader, contentType string, maxChars int) (string, bool, error) {
	reader := bufio.NewReader(decodingReader(body, contentType))

	var sb strings.Builder
	count := 0
	for {
		r, _, err := reader.ReadRune()
		if err == io.EOF {
			return sb.String(), false, nil
		}
		if err != nil {
			return sb.String(), false, err
		}
		if count == maxChars {
			return sb.String(), true, nil
		}
		sb.WriteRune(r)
		count++
	}
}

// decodingReader honours only the declared charset parameter; the body is
// never sniffed.
func decodingReader(body io.Reader, contentType string) io.Reader {
	if contentType == "" {
		return body
	}
	_, params, err := mime.ParseMediaType(contentType)
	if err != nil {
		return body
	}
	label := strings.TrimSpace(params["charset"])
	if label == "" {
		return body
	}

	enc, name := charset.Lookup(label)
	if enc == nil || name == "utf-8" {
		return body
	}
	return enc.NewDecoder().Reader(body)
}
