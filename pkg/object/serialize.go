package object

import (
	"bytes"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// ---------------------------------------------------------------------------
// TreeObj
// ---------------------------------------------------------------------------

// MarshalTree serializes a TreeObj into the binary wire form: for each
// entry, "<octal-mode> <name>\0" followed by the raw 20-byte hash. Entries
// are sorted by name before encoding, so two trees with the same children
// in different input order hash identically.
func MarshalTree(tr *TreeObj) ([]byte, error) {
	sorted := make([]TreeEntry, len(tr.Entries))
	copy(sorted, tr.Entries)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Name < sorted[j].Name
	})

	var buf bytes.Buffer
	for _, e := range sorted {
		if e.Name == "" || strings.ContainsAny(e.Name, "/\x00") {
			return nil, fmt.Errorf("marshal tree: invalid entry name %q", e.Name)
		}
		mode := e.Mode
		if mode == "" {
			mode = TreeModeFile
		}
		if _, err := parseTreeMode(mode); err != nil {
			return nil, fmt.Errorf("marshal tree: entry %q: %w", e.Name, err)
		}
		raw, err := e.Hash.Raw()
		if err != nil {
			return nil, fmt.Errorf("marshal tree: entry %q: %w", e.Name, err)
		}
		buf.WriteString(mode)
		buf.WriteByte(' ')
		buf.WriteString(e.Name)
		buf.WriteByte(0)
		buf.Write(raw)
	}
	return buf.Bytes(), nil
}

// UnmarshalTree parses a TreeObj from its binary serialized form.
func UnmarshalTree(data []byte) (*TreeObj, error) {
	tr := &TreeObj{}
	rest := data
	for len(rest) > 0 {
		sp := bytes.IndexByte(rest, ' ')
		if sp < 0 {
			return nil, fmt.Errorf("unmarshal tree: truncated mode")
		}
		mode, err := parseTreeMode(string(rest[:sp]))
		if err != nil {
			return nil, fmt.Errorf("unmarshal tree: %w", err)
		}
		rest = rest[sp+1:]

		nul := bytes.IndexByte(rest, 0)
		if nul < 0 {
			return nil, fmt.Errorf("unmarshal tree: truncated name")
		}
		name := string(rest[:nul])
		if name == "" {
			return nil, fmt.Errorf("unmarshal tree: empty entry name")
		}
		rest = rest[nul+1:]

		if len(rest) < RawHashLen {
			return nil, fmt.Errorf("unmarshal tree: truncated hash for entry %q", name)
		}
		h, err := HashFromRaw(rest[:RawHashLen])
		if err != nil {
			return nil, fmt.Errorf("unmarshal tree: entry %q: %w", name, err)
		}
		rest = rest[RawHashLen:]

		tr.Entries = append(tr.Entries, TreeEntry{Name: name, Mode: mode, Hash: h})
	}
	return tr, nil
}

func parseTreeMode(mode string) (string, error) {
	switch mode {
	case TreeModeDir, TreeModeFile, TreeModeExecutable:
		return mode, nil
	default:
		return "", fmt.Errorf("unknown mode %q", mode)
	}
}

// ---------------------------------------------------------------------------
// CommitObj
// ---------------------------------------------------------------------------

// MarshalCommit serializes a CommitObj:
//
//	tree H
//	parent H     (zero or more)
//	author Name <email> unix tz
//	committer Name <email> unix tz
//	gpgsig S     (only when signed)
//
//	message
func MarshalCommit(c *CommitObj) []byte {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "tree %s\n", string(c.TreeHash))
	for _, p := range c.Parents {
		fmt.Fprintf(&buf, "parent %s\n", string(p))
	}
	fmt.Fprintf(&buf, "author %s\n", encodeIdentity(c.Author))
	fmt.Fprintf(&buf, "committer %s\n", encodeIdentity(c.Committer))
	if strings.TrimSpace(c.Signature) != "" {
		fmt.Fprintf(&buf, "gpgsig %s\n", c.Signature)
	}
	buf.WriteByte('\n')
	buf.WriteString(c.Message)
	return buf.Bytes()
}

// CommitSigningPayload returns the canonical bytes a signature covers: the
// commit serialized without its signature header.
func CommitSigningPayload(c *CommitObj) []byte {
	unsigned := *c
	unsigned.Signature = ""
	return MarshalCommit(&unsigned)
}

// UnmarshalCommit parses a CommitObj from its serialized form.
func UnmarshalCommit(data []byte) (*CommitObj, error) {
	idx := bytes.Index(data, []byte("\n\n"))
	if idx < 0 {
		return nil, fmt.Errorf("unmarshal commit: missing header/message separator")
	}
	header := string(data[:idx])
	message := string(data[idx+2:])

	c := &CommitObj{Message: message}
	sawAuthor := false
	sawCommitter := false
	for _, line := range strings.Split(header, "\n") {
		key, val, ok := strings.Cut(line, " ")
		if !ok {
			return nil, fmt.Errorf("unmarshal commit: malformed header line %q", line)
		}
		switch key {
		case "tree":
			c.TreeHash = Hash(val)
		case "parent":
			c.Parents = append(c.Parents, Hash(val))
		case "author":
			id, err := parseIdentity(val)
			if err != nil {
				return nil, fmt.Errorf("unmarshal commit: author: %w", err)
			}
			c.Author = id
			sawAuthor = true
		case "committer":
			id, err := parseIdentity(val)
			if err != nil {
				return nil, fmt.Errorf("unmarshal commit: committer: %w", err)
			}
			c.Committer = id
			sawCommitter = true
		case "gpgsig":
			c.Signature = val
		default:
			return nil, fmt.Errorf("unmarshal commit: unknown header key %q", key)
		}
	}
	if c.TreeHash == "" {
		return nil, fmt.Errorf("unmarshal commit: missing tree header")
	}
	if !sawAuthor || !sawCommitter {
		return nil, fmt.Errorf("unmarshal commit: missing author or committer header")
	}
	return c, nil
}

// encodeIdentity renders "Name <email> unix tz".
func encodeIdentity(id Identity) string {
	tz := id.Timezone
	if tz == "" {
		tz = "+0000"
	}
	return fmt.Sprintf("%s <%s> %d %s", id.Name, id.Email, id.Unix, tz)
}

func parseIdentity(s string) (Identity, error) {
	open := strings.LastIndex(s, " <")
	if open < 0 {
		return Identity{}, fmt.Errorf("malformed identity %q", s)
	}
	closeIdx := strings.Index(s[open:], "> ")
	if closeIdx < 0 {
		return Identity{}, fmt.Errorf("malformed identity %q", s)
	}
	closeIdx += open

	id := Identity{
		Name:  s[:open],
		Email: s[open+2 : closeIdx],
	}

	fields := strings.Fields(s[closeIdx+2:])
	if len(fields) != 2 {
		return Identity{}, fmt.Errorf("malformed identity timestamp in %q", s)
	}
	unix, err := strconv.ParseInt(fields[0], 10, 64)
	if err != nil {
		return Identity{}, fmt.Errorf("bad timestamp %q: %w", fields[0], err)
	}
	id.Unix = unix
	id.Timezone = fields[1]
	return id, nil
}
