/*
 * Copyright (c) 2018 Miguel Ángel Ortuño.
 * See the LICENSE file for more information.
 */

package roster

import (
	"fmt"
	"testing"

	"github.com/ortuman/gjab/xmpp"
	"github.com/ortuman/gjab/xmpp/jid"
	"github.com/stretchr/testify/require"
)

type fakeListener struct {
	events []string
}

func (l *fakeListener) PresenceChanged(b *Buddy, online bool, state xmpp.ShowState) {
	l.events = append(l.events, fmt.Sprintf("presence:%s:%t:%s", b.JID, online, state))
}

func (l *fakeListener) BuddyUpdated(b *Buddy) {
	l.events = append(l.events, fmt.Sprintf("updated:%s:%s:%s", b.JID, b.Name, b.Group))
}

func (l *fakeListener) BuddyRemoved(b *Buddy) {
	l.events = append(l.events, fmt.Sprintf("removed:%s", b.JID))
}

func (l *fakeListener) ChatJoined(roomID int, name string) {
	l.events = append(l.events, fmt.Sprintf("joined:%d:%s", roomID, name))
}

func (l *fakeListener) ChatParticipant(roomID int, nick string, joined bool) {
	l.events = append(l.events, fmt.Sprintf("participant:%d:%s:%t", roomID, nick, joined))
}

func (l *fakeListener) ChatLeft(roomID int) {
	l.events = append(l.events, fmt.Sprintf("left:%d", roomID))
}

func (l *fakeListener) reset() []string {
	evs := l.events
	l.events = nil
	return evs
}

func presence(t *testing.T, from, tp, show string) *xmpp.Packet {
	e := xmpp.NewElementName("presence")
	e.SetFrom(from)
	if len(tp) > 0 {
		e.SetType(tp)
	}
	if len(show) > 0 {
		e.AppendNewElement("show").InsertText(show)
	}
	p, err := xmpp.NewPacket(e)
	require.Nil(t, err)
	return p
}

func rosterQuery(items ...*xmpp.Element) *xmpp.Element {
	q := xmpp.NewElementNamespace("query", xmpp.RosterNamespace)
	for _, item := range items {
		q.AppendElement(item)
	}
	return q
}

func rosterItem(j, name, group, subscription string) *xmpp.Element {
	item := xmpp.NewElementName("item")
	item.SetAttribute("jid", j)
	if len(name) > 0 {
		item.SetAttribute("name", name)
	}
	if len(subscription) > 0 {
		item.SetAttribute("subscription", subscription)
	}
	if len(group) > 0 {
		item.AppendNewElement("group").InsertText(group)
	}
	return item
}

func occupant(t *testing.T, s string) *jid.JID {
	j, err := jid.NewWithString(s, false)
	require.Nil(t, err)
	return j
}

func TestRoster_BuddyPresence(t *testing.T) {
	l := &fakeListener{}
	r := New(l)

	r.HandlePresence(presence(t, "u@d/res1", "", "away"))
	b := r.Buddy(occupant(t, "u@d"))
	require.NotNil(t, b)
	require.Equal(t, DefaultGroup, b.Group)
	require.Equal(t, "u@d", b.Name)
	require.Equal(t, []string{"res1"}, b.Resources)
	require.Equal(t, xmpp.AwayShowState, b.State)
	require.Equal(t, []string{"presence:u@d:true:away"}, l.reset())

	r.HandlePresence(presence(t, "u@d/res2", "", ""))
	require.Equal(t, []string{"res1", "res2"}, b.Resources)
	require.Equal(t, xmpp.OnlineShowState, b.State)

	// same resource is not duplicated
	r.HandlePresence(presence(t, "u@d/res2", "", "dnd"))
	require.Equal(t, []string{"res1", "res2"}, b.Resources)
	require.Equal(t, xmpp.DoNotDisturbShowState, b.State)
	l.reset()

	r.HandlePresence(presence(t, "u@d/res1", "unavailable", ""))
	require.Equal(t, []string{"res2"}, b.Resources)
	require.Len(t, l.reset(), 0)

	r.HandlePresence(presence(t, "u@d/res2", "unavailable", ""))
	require.False(t, b.IsOnline())
	require.Equal(t, xmpp.OnlineShowState, b.State)
	require.Equal(t, []string{"presence:u@d:false:online"}, l.reset())
}

func TestRoster_UnavailableIdempotence(t *testing.T) {
	l := &fakeListener{}
	r := New(l)

	r.HandlePresence(presence(t, "u@d/res1", "", ""))
	l.reset()

	r.HandlePresence(presence(t, "u@d/res1", "unavailable", ""))
	require.Equal(t, []string{"presence:u@d:false:online"}, l.reset())

	b := r.Buddy(occupant(t, "u@d"))
	require.Len(t, b.Resources, 0)

	r.HandlePresence(presence(t, "u@d/res1", "unavailable", ""))
	require.Len(t, b.Resources, 0)
	require.Len(t, l.reset(), 0)
}

func TestRoster_UnavailableFromUnknownBuddy(t *testing.T) {
	l := &fakeListener{}
	r := New(l)

	r.HandlePresence(presence(t, "u@d/res1", "unavailable", ""))
	require.Nil(t, r.Buddy(occupant(t, "u@d")))
	require.Len(t, l.events, 0)
}

func TestRoster_PresenceWithoutNode(t *testing.T) {
	l := &fakeListener{}
	r := New(l)

	r.HandlePresence(presence(t, "icq.jabber.org", "", ""))
	require.Len(t, r.Buddies(), 0)
	require.Len(t, l.events, 0)
}

func TestRoster_RosterQuery(t *testing.T) {
	l := &fakeListener{}
	r := New(l)

	r.HandleRosterQuery(rosterQuery(
		rosterItem("a@b", "A", "", ""),
		rosterItem("c@d/laptop", "", "Friends", ""),
		rosterItem("transport.d", "", "", ""),
	))
	require.Equal(t, []string{"updated:a@b:A:Buddies", "updated:c@d:c@d:Friends"}, l.reset())

	buddies := r.Buddies()
	require.Len(t, buddies, 2)
	require.Equal(t, "a@b", buddies[0].JID.String())
	require.False(t, buddies[0].IsOnline())

	// update preserves group unless a new one is given
	r.HandleRosterQuery(rosterQuery(rosterItem("a@b", "Alice", "", "")))
	require.Equal(t, []string{"updated:a@b:Alice:Buddies"}, l.reset())

	r.HandleRosterQuery(rosterQuery(rosterItem("A@B", "", "Work", "")))
	require.Equal(t, []string{"updated:a@b:Alice:Work"}, l.reset())

	r.HandleRosterQuery(rosterQuery(rosterItem("a@b", "", "", "remove")))
	require.Equal(t, []string{"removed:a@b"}, l.reset())
	require.Nil(t, r.Buddy(occupant(t, "a@b")))

	// removing an unknown buddy is a no-op
	r.HandleRosterQuery(rosterQuery(rosterItem("x@y", "", "", "remove")))
	require.Len(t, l.reset(), 0)
}

func TestRoster_JoinChat(t *testing.T) {
	l := &fakeListener{}
	r := New(l)

	room, created := r.JoinChat(occupant(t, "room@conference.jabber.org/alice"))
	require.True(t, created)
	require.Equal(t, 1, room.ID)
	require.Equal(t, "room", room.Name)
	require.Equal(t, "alice", room.Nick())
	require.False(t, room.Confirmed)

	dup, created := r.JoinChat(occupant(t, "Room@conference.jabber.org/alice"))
	require.False(t, created)
	require.Equal(t, room, dup)

	// foreign occupant presence from a pending room is dropped
	r.HandlePresence(presence(t, "room@conference.jabber.org/bob", "", ""))
	require.False(t, room.Confirmed)
	require.Len(t, l.reset(), 0)
	require.Len(t, r.Buddies(), 0)

	r.HandlePresence(presence(t, "room@conference.jabber.org/alice", "", ""))
	require.True(t, room.Confirmed)
	require.Equal(t, []string{"joined:1:room", "participant:1:alice:true"}, l.reset())
	require.Equal(t, room, r.ConfirmedRoom(occupant(t, "room@conference.jabber.org")))

	r.HandlePresence(presence(t, "room@conference.jabber.org/bob", "", ""))
	require.Equal(t, []string{"participant:1:bob:true"}, l.reset())
	require.Equal(t, []string{"alice", "bob"}, room.Participants())

	r.HandlePresence(presence(t, "room@conference.jabber.org/bob", "unavailable", ""))
	require.Equal(t, []string{"participant:1:bob:false"}, l.reset())

	r.HandlePresence(presence(t, "room@conference.jabber.org/alice", "unavailable", ""))
	require.Equal(t, []string{"left:1"}, l.reset())
	require.Nil(t, r.Room(1))

	// room ids are never reused
	room, _ = r.JoinChat(occupant(t, "room@conference.jabber.org/alice"))
	require.Equal(t, 2, room.ID)
}

func TestRoster_PendingRoomOrder(t *testing.T) {
	l := &fakeListener{}
	r := New(l)

	first, _ := r.JoinChat(occupant(t, "room@conf.a/alice"))
	second, _ := r.JoinChat(occupant(t, "room@conf.b/alice"))

	r.HandlePresence(presence(t, "room@conf.b/alice", "", ""))
	require.False(t, first.Confirmed)
	require.True(t, second.Confirmed)
	require.Equal(t, []string{"joined:2:room", "participant:2:alice:true"}, l.reset())
}

func TestRoster_PendingRoomRejected(t *testing.T) {
	l := &fakeListener{}
	r := New(l)

	room, _ := r.JoinChat(occupant(t, "room@conf.a/alice"))
	r.HandlePresence(presence(t, "room@conf.a/alice", "unavailable", ""))
	require.Nil(t, r.Room(room.ID))
	require.Len(t, l.events, 0)
}

func TestRoster_PendingRoomError(t *testing.T) {
	l := &fakeListener{}
	r := New(l)

	room, _ := r.JoinChat(occupant(t, "room@conf.org/alice"))
	r.HandlePresence(presence(t, "room@conf.org/alice", "error", ""))
	require.False(t, room.Confirmed)
	require.Nil(t, r.Room(room.ID))
	require.Len(t, l.reset(), 0)
	require.Len(t, r.Buddies(), 0)

	// the join can be requested again
	room, created := r.JoinChat(occupant(t, "room@conf.org/alice"))
	require.True(t, created)
	require.Equal(t, 2, room.ID)
}

func TestRoster_ConfirmedRoomError(t *testing.T) {
	l := &fakeListener{}
	r := New(l)

	room, _ := r.JoinChat(occupant(t, "room@conf.org/alice"))
	r.HandlePresence(presence(t, "room@conf.org/alice", "", ""))
	l.reset()

	r.HandlePresence(presence(t, "room@conf.org/bob", "error", ""))
	require.Len(t, l.reset(), 0)
	require.Equal(t, []string{"alice"}, room.Participants())
	require.Equal(t, room, r.ConfirmedRoom(occupant(t, "room@conf.org")))
}

func TestRoster_ErrorAndProbePresence(t *testing.T) {
	l := &fakeListener{}
	r := New(l)

	r.HandlePresence(presence(t, "nobody@d.org", "error", ""))
	r.HandlePresence(presence(t, "nobody@d.org/res", "probe", ""))
	require.Len(t, l.reset(), 0)
	require.Len(t, r.Buddies(), 0)

	r.HandlePresence(presence(t, "u@d/res1", "", "away"))
	l.reset()
	r.HandlePresence(presence(t, "u@d/res2", "error", ""))
	b := r.Buddy(occupant(t, "u@d"))
	require.Equal(t, []string{"res1"}, b.Resources)
	require.Equal(t, xmpp.AwayShowState, b.State)
	require.Len(t, l.reset(), 0)
}

func TestRoster_CancelJoin(t *testing.T) {
	l := &fakeListener{}
	r := New(l)

	room, _ := r.JoinChat(occupant(t, "room@conf.org/alice"))
	require.True(t, r.CancelJoin(room.ID))
	require.Nil(t, r.Room(room.ID))
	require.False(t, r.CancelJoin(room.ID))

	// a late self-presence no longer confirms it
	r.HandlePresence(presence(t, "room@conf.org/alice", "", ""))
	require.Len(t, r.Rooms(), 0)
}

func TestRoster_Reset(t *testing.T) {
	l := &fakeListener{}
	r := New(l)

	r.JoinChat(occupant(t, "room@conf.a/alice"))
	r.JoinChat(occupant(t, "other@conf.a/alice"))
	r.HandlePresence(presence(t, "room@conf.a/alice", "", ""))
	r.HandlePresence(presence(t, "u@d/res", "", ""))
	l.reset()

	r.Reset()
	require.Equal(t, []string{"left:1"}, l.reset())
	require.Len(t, r.Rooms(), 0)
	require.Nil(t, r.Room(2))
	require.Len(t, r.Buddies(), 0)
}
