package scheme

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"papercut/internal/models"
)

// Save writes s as a JSON object mapping "(lower, upper)" to [r, g, b], in entry order.
func Save(s *Scheme, path string) error {
	if s == nil {
		return ErrNilScheme
	}

	data, err := Marshal(s)
	if err != nil {
		return err
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write color scheme %s: %w", path, err)
	}
	return nil
}

// Marshal encodes s. encoding/json sorts map keys, so the object is assembled by hand to keep order.
func Marshal(s *Scheme) ([]byte, error) {
	if s == nil {
		return nil, ErrNilScheme
	}

	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, e := range s.Entries {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(e.Range.Key())
		if err != nil {
			return nil, err
		}
		value, err := json.Marshal(e.Color.Ints())
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(value)
	}
	buf.WriteByte('}')

	var out bytes.Buffer
	if err := json.Indent(&out, buf.Bytes(), "", "  "); err != nil {
		return nil, err
	}
	out.WriteByte('\n')
	return out.Bytes(), nil
}

// Load reads a scheme. A missing file is not an error: found is false and the scheme nil.
// A file that exists but does not decode yields a *DecodeError.
func Load(path string) (*Scheme, bool, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("read color scheme %s: %w", path, err)
	}

	s, err := Unmarshal(data)
	if err != nil {
		return nil, true, &DecodeError{Path: path, Err: err}
	}
	return s, true, nil
}

// Unmarshal decodes the object token by token so that entry order survives.
func Unmarshal(data []byte) (*Scheme, error) {
	dec := json.NewDecoder(bytes.NewReader(data))

	if err := expectDelim(dec, '{'); err != nil {
		return nil, err
	}

	s := &Scheme{}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		key, ok := tok.(string)
		if !ok {
			return nil, fmt.Errorf("unexpected key token %v", tok)
		}

		r, err := ParseKey(key)
		if err != nil {
			return nil, err
		}

		var rgb []int
		if err := dec.Decode(&rgb); err != nil {
			return nil, fmt.Errorf("value for %q: %w", key, err)
		}
		if len(rgb) != 3 {
			return nil, fmt.Errorf("value for %q has %d components, want 3", key, len(rgb))
		}
		c, err := models.ColorFromInts(rgb[0], rgb[1], rgb[2])
		if err != nil {
			return nil, fmt.Errorf("value for %q: %w", key, err)
		}

		s.Entries = append(s.Entries, Entry{Range: r, Color: c})
	}

	if err := expectDelim(dec, '}'); err != nil {
		return nil, err
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, fmt.Errorf("trailing data after color scheme object")
	}
	return s, nil
}

// ParseKey parses "(lower, upper)". Whitespace around the numbers is ignored.
func ParseKey(key string) (models.Range, error) {
	inner, ok := strings.CutPrefix(strings.TrimSpace(key), "(")
	if ok {
		inner, ok = strings.CutSuffix(inner, ")")
	}
	if !ok {
		return models.Range{}, fmt.Errorf("key %q is not of the form (lower, upper)", key)
	}

	parts := strings.Split(inner, ",")
	if len(parts) != 2 {
		return models.Range{}, fmt.Errorf("key %q needs exactly two bounds", key)
	}

	var bounds [2]int
	for i, p := range parts {
		v, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return models.Range{}, fmt.Errorf("key %q: %w", key, err)
		}
		if v < models.MinIntensity || v > models.MaxIntensity {
			return models.Range{}, fmt.Errorf("key %q: bound %d outside [0, 255]", key, v)
		}
		bounds[i] = v
	}
	return models.Range{Lower: bounds[0], Upper: bounds[1]}, nil
}

func expectDelim(dec *json.Decoder, want json.Delim) error {
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if d, ok := tok.(json.Delim); !ok || d != want {
		return fmt.Errorf("expected %q, got %v", want, tok)
	}
	return nil
}
