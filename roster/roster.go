/*
 * Copyright (c) 2018 Miguel Ángel Ortuño.
 * See the LICENSE file for more information.
 */

package roster

import (
	"sort"
	"strings"

	"github.com/ortuman/gjab/log"
	"github.com/ortuman/gjab/xmpp"
	"github.com/ortuman/gjab/xmpp/jid"
)

// DefaultGroup is the group assigned to buddies with no group information.
const DefaultGroup = "Buddies"

// Listener receives roster and chat room model updates.
type Listener interface {
	// PresenceChanged is invoked when a buddy presence is received.
	PresenceChanged(b *Buddy, online bool, state xmpp.ShowState)

	// BuddyUpdated is invoked when roster data creates or updates a buddy.
	BuddyUpdated(b *Buddy)

	// BuddyRemoved is invoked when a buddy is deleted from the roster.
	BuddyRemoved(b *Buddy)

	// ChatJoined is invoked once the server confirms a chat room join.
	ChatJoined(roomID int, name string)

	// ChatParticipant is invoked when a participant joins or leaves a room.
	ChatParticipant(roomID int, nick string, joined bool)

	// ChatLeft is invoked after a chat room has been left.
	ChatLeft(roomID int)
}

// Buddy represents a roster contact.
type Buddy struct {
	JID       *jid.JID
	Name      string
	Group     string
	Resources []string
	State     xmpp.ShowState
}

// IsOnline returns whether any of the buddy resources is available.
func (b *Buddy) IsOnline() bool {
	return len(b.Resources) > 0
}

func (b *Buddy) hasResource(res string) bool {
	for _, r := range b.Resources {
		if r == res {
			return true
		}
	}
	return false
}

func (b *Buddy) removeResource(res string) bool {
	for i, r := range b.Resources {
		if r == res {
			b.Resources = append(b.Resources[:i], b.Resources[i+1:]...)
			return true
		}
	}
	return false
}

// ChatRoom represents a multi-user chat room the user requested to join.
type ChatRoom struct {
	// ID is the room local identifier.
	ID int

	// Name is the room name, that is the node part of its address.
	Name string

	// JID is the room occupant address: room@server/nick.
	JID *jid.JID

	// Confirmed reports whether the server acknowledged the join.
	Confirmed bool

	participants map[string]bool
}

// Nick returns the nickname used in the room.
func (c *ChatRoom) Nick() string {
	return c.JID.Resource()
}

// Participants returns the sorted list of room participants.
func (c *ChatRoom) Participants() []string {
	var ret []string
	for nick := range c.participants {
		ret = append(ret, nick)
	}
	sort.Strings(ret)
	return ret
}

// Roster reconciles the local buddy and chat room model against
// incoming presence and roster query stanzas.
type Roster struct {
	l       Listener
	buddies map[string]*Buddy
	pending []*ChatRoom
	rooms   []*ChatRoom
	nextID  int
}

// New returns an empty roster delivering updates to l.
func New(l Listener) *Roster {
	return &Roster{
		l:       l,
		buddies: make(map[string]*Buddy),
		nextID:  1,
	}
}

// Buddy returns the buddy associated to an address, or nil.
func (r *Roster) Buddy(j *jid.JID) *Buddy {
	return r.buddies[buddyKey(j)]
}

// Buddies returns every roster buddy sorted by address.
func (r *Roster) Buddies() []*Buddy {
	var ret []*Buddy
	for _, b := range r.buddies {
		ret = append(ret, b)
	}
	sort.Slice(ret, func(i, j int) bool { return ret[i].JID.String() < ret[j].JID.String() })
	return ret
}

// Room returns the room associated to a local identifier, either
// pending or confirmed.
func (r *Roster) Room(id int) *ChatRoom {
	for _, room := range r.rooms {
		if room.ID == id {
			return room
		}
	}
	for _, room := range r.pending {
		if room.ID == id {
			return room
		}
	}
	return nil
}

// ConfirmedRoom returns the confirmed room whose address matches j, or nil.
func (r *Roster) ConfirmedRoom(j *jid.JID) *ChatRoom {
	return matchRoom(r.rooms, j)
}

// Rooms returns every confirmed chat room.
func (r *Roster) Rooms() []*ChatRoom {
	return append([]*ChatRoom(nil), r.rooms...)
}

// JoinChat registers a pending join for the occupant address roomJID.
// Requesting a room that is already pending or joined returns the
// existing entry with created set to false.
func (r *Roster) JoinChat(roomJID *jid.JID) (room *ChatRoom, created bool) {
	if room = matchRoom(r.rooms, roomJID); room != nil {
		return room, false
	}
	if room = matchRoom(r.pending, roomJID); room != nil {
		return room, false
	}
	room = &ChatRoom{
		ID:           r.nextID,
		Name:         roomJID.Node(),
		JID:          roomJID,
		participants: make(map[string]bool),
	}
	r.nextID++
	r.pending = append(r.pending, room)
	return room, true
}

// CancelJoin drops a still pending chat room. It returns false if id
// does not identify a pending room.
func (r *Roster) CancelJoin(id int) bool {
	for _, room := range r.pending {
		if room.ID == id {
			r.pending = removeRoom(r.pending, room)
			return true
		}
	}
	return false
}

// HandlePresence ingests a presence packet.
func (r *Roster) HandlePresence(p *xmpp.Packet) {
	from := p.From
	if from == nil || len(from.Node()) == 0 {
		return
	}
	if p.PresenceType == xmpp.ProbePresence {
		log.Debugf("roster: dropping presence probe from %s", from)
		return
	}
	if room := matchRoom(r.rooms, from); room != nil {
		if p.PresenceType == xmpp.ErrorPresence {
			r.logPresenceError(p)
			return
		}
		r.roomPresence(room, p)
		return
	}
	if room := matchRoom(r.pending, from); room != nil {
		r.pendingRoomPresence(room, p)
		return
	}
	if p.PresenceType == xmpp.ErrorPresence {
		r.logPresenceError(p)
		return
	}
	r.buddyPresence(p)
}

func (r *Roster) logPresenceError(p *xmpp.Packet) {
	code, text, _ := xmpp.ErrorText(p.Stanza)
	log.Warnf("roster: presence error from %s: %s %s", p.From, code, text)
}

func (r *Roster) roomPresence(room *ChatRoom, p *xmpp.Packet) {
	nick := p.From.Resource()
	if len(nick) == 0 {
		return
	}
	if p.PresenceType == xmpp.UnavailablePresence {
		if strings.EqualFold(nick, room.Nick()) {
			r.rooms = removeRoom(r.rooms, room)
			r.l.ChatLeft(room.ID)
			return
		}
		if room.participants[nick] {
			delete(room.participants, nick)
			r.l.ChatParticipant(room.ID, nick, false)
		}
		return
	}
	room.participants[nick] = true
	r.l.ChatParticipant(room.ID, nick, true)
}

func (r *Roster) pendingRoomPresence(room *ChatRoom, p *xmpp.Packet) {
	nick := p.From.Resource()
	if !strings.EqualFold(nick, room.Nick()) {
		log.Debugf("roster: dropping presence from %s: room %s not joined yet", p.From, room.Name)
		return
	}
	switch p.PresenceType {
	case xmpp.UnavailablePresence:
		r.pending = removeRoom(r.pending, room)
		return
	case xmpp.ErrorPresence:
		// join rejected (nickname conflict, room locked...)
		r.logPresenceError(p)
		r.pending = removeRoom(r.pending, room)
		return
	}
	r.pending = removeRoom(r.pending, room)
	room.Confirmed = true
	r.rooms = append(r.rooms, room)
	r.l.ChatJoined(room.ID, room.Name)

	room.participants[nick] = true
	r.l.ChatParticipant(room.ID, nick, true)
}

func (r *Roster) buddyPresence(p *xmpp.Packet) {
	b := r.Buddy(p.From)
	res := p.From.Resource()

	if p.PresenceType == xmpp.UnavailablePresence {
		if b == nil || !b.removeResource(res) {
			return
		}
		if !b.IsOnline() {
			b.State = xmpp.OnlineShowState
			r.l.PresenceChanged(b, false, b.State)
		}
		return
	}
	if b == nil {
		bare := p.From.ToBareJID()
		b = &Buddy{JID: bare, Name: bare.String(), Group: DefaultGroup}
		r.buddies[buddyKey(bare)] = b
	}
	if !b.hasResource(res) {
		b.Resources = append(b.Resources, res)
	}
	b.State = xmpp.ShowStateOf(p.Stanza)
	r.l.PresenceChanged(b, true, b.State)
}

// HandleRosterQuery ingests the <query/> child of a roster result or push.
func (r *Roster) HandleRosterQuery(query *xmpp.Element) {
	for _, item := range query.Elements().Children("item") {
		j, err := jid.NewWithString(item.Attributes().Get("jid"), false)
		if err != nil {
			log.Warnf("roster: invalid item address: %v", err)
			continue
		}
		if len(j.Node()) == 0 {
			// gateway or server entries are not buddies
			continue
		}
		bare := j.ToBareJID()
		key := buddyKey(bare)

		if item.Attributes().Get("subscription") == "remove" {
			if b := r.buddies[key]; b != nil {
				delete(r.buddies, key)
				r.l.BuddyRemoved(b)
			}
			continue
		}
		name, hasName := item.Attribute("name")
		var group string
		if g := item.Elements().Child("group"); g != nil {
			group = strings.TrimSpace(g.Text())
		}
		b := r.buddies[key]
		if b == nil {
			b = &Buddy{JID: bare, Name: bare.String(), Group: DefaultGroup}
			r.buddies[key] = b
		}
		if hasName && len(name) > 0 {
			b.Name = name
		}
		if len(group) > 0 {
			b.Group = group
		}
		r.l.BuddyUpdated(b)
	}
}

// Reset destroys every chat room and buddy. Confirmed rooms are
// reported as left.
func (r *Roster) Reset() {
	rooms := r.rooms
	r.rooms = nil
	r.pending = nil
	r.buddies = make(map[string]*Buddy)
	for _, room := range rooms {
		r.l.ChatLeft(room.ID)
	}
}

func matchRoom(rooms []*ChatRoom, j *jid.JID) *ChatRoom {
	for _, room := range rooms {
		if room.JID.BareEqual(j) {
			return room
		}
	}
	return nil
}

func removeRoom(rooms []*ChatRoom, room *ChatRoom) []*ChatRoom {
	for i, rm := range rooms {
		if rm == room {
			return append(rooms[:i], rooms[i+1:]...)
		}
	}
	return rooms
}

func buddyKey(j *jid.JID) string {
	return strings.ToLower(j.Node() + "@" + j.Domain())
}
