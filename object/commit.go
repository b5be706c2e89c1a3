package object

import (
	"bytes"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/mintvcs/mintvcs/internal/readutil"
	"github.com/mintvcs/mintvcs/objecthash"
)

// ErrSignatureInvalid is returned when an author/committer line can't
// be parsed.
var ErrSignatureInvalid = errors.New("commit signature is invalid")

// ErrCommitCorrupt is returned when a commit body is missing a
// required field or its fields are out of grammar.
var ErrCommitCorrupt = errors.New("corrupt commit object")

// Signature identifies who made a change and when, stored in a commit
// body as an `<identity> <unix-seconds> <tz>` line.
type Signature struct {
	Name  string
	Email string
	Time  time.Time
}

// String renders the signature the way it's stored in a commit body:
// "Name <email> unixSeconds +zzzz".
func (s Signature) String() string {
	return fmt.Sprintf("%s <%s> %d %s", s.Name, s.Email, s.Time.Unix(), s.Time.Format("-0700"))
}

// IsZero reports whether the signature has never been set.
func (s Signature) IsZero() bool {
	return s.Name == "" && s.Email == "" && s.Time.IsZero()
}

// NewSignature builds a signature for the current moment.
func NewSignature(name, email string) Signature {
	return Signature{Name: name, Email: email, Time: time.Now()}
}

// ParseSignature parses a signature line's value (everything after the
// "author " / "committer " key).
func ParseSignature(b []byte) (Signature, error) {
	var sig Signature

	nameRaw := readutil.ReadTo(b, '<')
	if nameRaw == nil {
		return sig, fmt.Errorf("missing email marker: %w", ErrSignatureInvalid)
	}
	sig.Name = strings.TrimSpace(string(nameRaw))
	offset := len(nameRaw) + 1

	emailRaw := readutil.ReadTo(b[offset:], '>')
	if emailRaw == nil {
		return sig, fmt.Errorf("missing closing email marker: %w", ErrSignatureInvalid)
	}
	sig.Email = string(emailRaw)
	offset += len(emailRaw) + 2 // skip "> "
	if offset >= len(b) {
		return sig, fmt.Errorf("missing timestamp: %w", ErrSignatureInvalid)
	}

	timestampRaw := readutil.ReadTo(b[offset:], ' ')
	if timestampRaw == nil {
		return sig, fmt.Errorf("missing timezone: %w", ErrSignatureInvalid)
	}
	offset += len(timestampRaw) + 1

	seconds, err := strconv.ParseInt(string(timestampRaw), 10, 64)
	if err != nil {
		return sig, fmt.Errorf("invalid timestamp %q: %w", timestampRaw, ErrSignatureInvalid)
	}
	sig.Time = time.Unix(seconds, 0)

	tz, err := time.Parse("-0700", string(b[offset:]))
	if err != nil {
		return sig, fmt.Errorf("invalid timezone %q: %w", b[offset:], ErrSignatureInvalid)
	}
	sig.Time = sig.Time.In(tz.Location())
	return sig, nil
}

// CommitOptions holds the optional fields used to build a commit.
type CommitOptions struct {
	Message string
	// Committer defaults to Author when left zero.
	Committer Signature
	Parents   []objecthash.Identity
}

// Commit is a single node in the history DAG.
type Commit struct {
	rawObject *Object

	tree      objecthash.Identity
	parents   []objecthash.Identity
	author    Signature
	committer Signature
	message   string
}

// NewCommit builds a commit Object from a tree, an author, and the
// rest of CommitOptions. Identities aren't checked for existence here;
// that's the object store's responsibility.
func NewCommit(tree objecthash.Identity, author Signature, opts CommitOptions) *Commit {
	c := &Commit{
		tree:      tree,
		parents:   opts.Parents,
		author:    author,
		committer: opts.Committer,
		message:   opts.Message,
	}
	if c.committer.IsZero() {
		c.committer = author
	}

	buf := new(bytes.Buffer)
	buf.WriteString("tree ")
	buf.WriteString(c.tree.String())
	buf.WriteByte('\n')
	for _, p := range c.parents {
		buf.WriteString("parent ")
		buf.WriteString(p.String())
		buf.WriteByte('\n')
	}
	buf.WriteString("author ")
	buf.WriteString(c.author.String())
	buf.WriteByte('\n')
	buf.WriteString("committer ")
	buf.WriteString(c.committer.String())
	buf.WriteByte('\n')
	buf.WriteByte('\n')
	buf.WriteString(c.message)

	c.rawObject = New(KindCommit, buf.Bytes())
	return c
}

// AsCommit parses an already-decoded Object as a Commit. The caller is
// expected to have checked o.Kind() == KindCommit.
func AsCommit(o *Object) (*Commit, error) {
	c := &Commit{rawObject: o}
	body := o.Bytes()
	offset := 0

	for {
		line := readutil.ReadTo(body[offset:], '\n')
		if line == nil {
			return nil, fmt.Errorf("unterminated header: %w", ErrCommitCorrupt)
		}
		offset += len(line) + 1

		if len(line) == 0 {
			c.message = string(body[offset:])
			break
		}

		kv := bytes.SplitN(line, []byte{' '}, 2)
		if len(kv) != 2 {
			return nil, fmt.Errorf("malformed header line %q: %w", line, ErrCommitCorrupt)
		}

		var err error
		switch string(kv[0]) {
		case "tree":
			c.tree, err = objecthash.Parse(string(kv[1]))
			if err != nil {
				return nil, fmt.Errorf("invalid tree id %q: %w", kv[1], ErrCommitCorrupt)
			}
		case "parent":
			id, pErr := objecthash.Parse(string(kv[1]))
			if pErr != nil {
				return nil, fmt.Errorf("invalid parent id %q: %w", kv[1], ErrCommitCorrupt)
			}
			c.parents = append(c.parents, id)
		case "author":
			c.author, err = ParseSignature(kv[1])
			if err != nil {
				return nil, fmt.Errorf("author: %w", err)
			}
		case "committer":
			c.committer, err = ParseSignature(kv[1])
			if err != nil {
				return nil, fmt.Errorf("committer: %w", err)
			}
		default:
			// unknown header lines are ignored rather than rejected, so
			// a future field can be added without breaking old commits
		}
	}

	if c.tree.IsZero() {
		return nil, fmt.Errorf("missing tree: %w", ErrCommitCorrupt)
	}
	if c.author.IsZero() {
		return nil, fmt.Errorf("missing author: %w", ErrCommitCorrupt)
	}

	return c, nil
}

// ID returns the commit's identity.
func (c *Commit) ID() objecthash.Identity {
	return c.rawObject.ID()
}

// TreeID returns the identity of the commit's root tree.
func (c *Commit) TreeID() objecthash.Identity {
	return c.tree
}

// ParentIDs returns the commit's parents, in the order they were
// recorded. 0 parents for the first commit of a branch, 1 for a
// regular commit, 2+ for a merge.
func (c *Commit) ParentIDs() []objecthash.Identity {
	out := make([]objecthash.Identity, len(c.parents))
	copy(out, c.parents)
	return out
}

// Author returns who made the change.
func (c *Commit) Author() Signature {
	return c.author
}

// Committer returns who recorded the commit.
func (c *Commit) Committer() Signature {
	return c.committer
}

// Message returns the free-text commit message.
func (c *Commit) Message() string {
	return c.message
}

// ToObject returns the Commit's underlying Object.
func (c *Commit) ToObject() *Object {
	return c.rawObject
}
