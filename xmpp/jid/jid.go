/*
 * Copyright (c) 2018 Miguel Ángel Ortuño.
 * See the LICENSE file for more information.
 */

package jid

import (
	"bytes"
	"net"
	"strings"
	"unicode/utf8"

	"github.com/ortuman/gjab/pool"
	"github.com/pkg/errors"
	"golang.org/x/net/idna"
	"golang.org/x/text/secure/precis"
)

var bufPool = pool.NewBufferPool()

var (
	// ErrEmptyDomain is returned when an address lacks its server part.
	ErrEmptyDomain = errors.New("jid: empty domain")

	// ErrEmptyResource is returned when an address ends with a '/' separator.
	ErrEmptyResource = errors.New("jid: empty resource")
)

// MatchingOptions represents a matching jid mask.
type MatchingOptions int8

const (
	// MatchesNode indicates that left and right operand has same node value.
	MatchesNode = MatchingOptions(1)

	// MatchesDomain indicates that left and right operand has same domain value.
	MatchesDomain = MatchingOptions(2)

	// MatchesResource indicates that left and right operand has same resource value.
	MatchesResource = MatchingOptions(4)

	// MatchesBare indicates that left and right operand has same node and domain value.
	MatchesBare = MatchesNode | MatchesDomain
)

// JID represents an XMPP address.
// A JID is made up of a node (generally a username), a domain, and a resource.
// The node and resource are optional; domain is required.
type JID struct {
	node     string
	domain   string
	resource string
}

// New constructs a JID given a user, domain, and resource.
// This construction allows the caller to specify if stringprep should be applied or not.
func New(node, domain, resource string, skipStringPrep bool) (*JID, error) {
	if len(domain) == 0 {
		return nil, ErrEmptyDomain
	}
	if skipStringPrep {
		return &JID{
			node:     node,
			domain:   domain,
			resource: resource,
		}, nil
	}
	return stringPrep(node, domain, resource)
}

// NewWithString constructs a JID from its string representation.
func NewWithString(str string, skipStringPrep bool) (*JID, error) {
	if len(str) == 0 {
		return nil, ErrEmptyDomain
	}
	node, domain, resource, err := split(str)
	if err != nil {
		return nil, err
	}
	return New(node, domain, resource, skipStringPrep)
}

func split(str string) (node, domain, resource string, err error) {
	rest := str
	if i := strings.Index(rest, "/"); i >= 0 {
		if i+1 == len(rest) {
			return "", "", "", ErrEmptyResource
		}
		resource = rest[i+1:]
		rest = rest[:i]
	}
	if i := strings.Index(rest, "@"); i >= 0 {
		node = rest[:i]
		rest = rest[i+1:]
	}
	if len(rest) == 0 {
		return "", "", "", ErrEmptyDomain
	}
	return node, rest, resource, nil
}

// Node returns the node, or empty string if this JID does not contain node information.
func (j *JID) Node() string {
	return j.node
}

// Domain returns the domain.
func (j *JID) Domain() string {
	return j.domain
}

// Resource returns the resource, or empty string if this JID does not contain resource information.
func (j *JID) Resource() string {
	return j.resource
}

// ToBareJID returns the JID with resource information removed.
func (j *JID) ToBareJID() *JID {
	return &JID{node: j.node, domain: j.domain}
}

// WithResource returns a copy of the JID qualified by resource.
func (j *JID) WithResource(resource string) *JID {
	return &JID{node: j.node, domain: j.domain, resource: resource}
}

// IsServer returns true if instance is a server JID.
func (j *JID) IsServer() bool {
	return len(j.node) == 0
}

// IsBare returns true if instance is a bare JID.
func (j *JID) IsBare() bool {
	return len(j.node) > 0 && len(j.resource) == 0
}

// IsFull returns true if instance is a full JID.
func (j *JID) IsFull() bool {
	return len(j.resource) > 0
}

// Matches returns true if two JID's are equivalent.
func (j *JID) Matches(j2 *JID, options MatchingOptions) bool {
	if (options&MatchesNode) > 0 && j.node != j2.node {
		return false
	}
	if (options&MatchesDomain) > 0 && j.domain != j2.domain {
		return false
	}
	if (options&MatchesResource) > 0 && j.resource != j2.resource {
		return false
	}
	return true
}

// BareEqual reports whether both addresses name the same account,
// ignoring resources. Node and domain are compared case-insensitively.
func (j *JID) BareEqual(j2 *JID) bool {
	if j2 == nil {
		return false
	}
	return strings.EqualFold(j.node, j2.node) && strings.EqualFold(j.domain, j2.domain)
}

// String returns a string representation of the JID.
func (j *JID) String() string {
	buf := bufPool.Get()
	defer bufPool.Put(buf)
	if len(j.node) > 0 {
		buf.WriteString(j.node)
		buf.WriteString("@")
	}
	buf.WriteString(j.domain)
	if len(j.resource) > 0 {
		buf.WriteString("/")
		buf.WriteString(j.resource)
	}
	return buf.String()
}

func stringPrep(node, domain, resource string) (*JID, error) {
	if !utf8.ValidString(node) || !utf8.ValidString(resource) {
		return nil, errors.New("jid: invalid UTF-8")
	}

	// RFC 7622 §3.2.1: A-labels are converted to U-labels before
	// the domain is used.
	var err error
	domain, err = idna.ToUnicode(domain)
	if err != nil {
		return nil, errors.Wrap(err, "jid: domain")
	}
	if !utf8.ValidString(domain) {
		return nil, errors.New("jid: domain contains invalid UTF-8")
	}

	var nodelen int
	data := make([]byte, 0, len(node)+len(domain)+len(resource))

	if node != "" {
		data, err = precis.UsernameCaseMapped.Append(data, []byte(node))
		if err != nil {
			return nil, errors.Wrap(err, "jid: node")
		}
		nodelen = len(data)
	}
	data = append(data, []byte(domain)...)

	if resource != "" {
		data, err = precis.OpaqueString.Append(data, []byte(resource))
		if err != nil {
			return nil, errors.Wrap(err, "jid: resource")
		}
	}
	if err := commonChecks(data[:nodelen], domain, data[nodelen+len(domain):]); err != nil {
		return nil, err
	}
	return &JID{
		node:     string(data[:nodelen]),
		domain:   string(data[nodelen : nodelen+len(domain)]),
		resource: string(data[nodelen+len(domain):]),
	}, nil
}

func commonChecks(node []byte, domain string, resource []byte) error {
	if len(node) > 1023 {
		return errors.New("jid: node must be smaller than 1024 bytes")
	}
	// RFC 7622 §3.3.1
	if bytes.ContainsAny(node, `"&'/:<>@`) {
		return errors.New("jid: node contains forbidden characters")
	}
	if len(resource) > 1023 {
		return errors.New("jid: resource must be smaller than 1024 bytes")
	}
	if l := len(domain); l < 1 || l > 1023 {
		return errors.New("jid: domain must be between 1 and 1023 bytes")
	}
	return checkIP6String(domain)
}

func checkIP6String(domain string) error {
	if l := len(domain); l > 2 && strings.HasPrefix(domain, "[") && strings.HasSuffix(domain, "]") {
		if ip := net.ParseIP(domain[1 : l-1]); ip == nil || ip.To4() != nil {
			return errors.New("jid: domain is not a valid IPv6 address")
		}
	}
	return nil
}
