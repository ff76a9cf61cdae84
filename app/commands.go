/*
 * Copyright (c) 2018 Miguel Ángel Ortuño.
 * See the LICENSE file for more information.
 */

package app

import (
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

const commandsStr = `Commands:
    /msg <jid> <text>      Send a message
    /add <jid>             Add a buddy to the roster
    /remove <jid>          Remove a buddy from the roster
    /sub <jid>             Request a presence subscription
    /unsub <jid>           Cancel a presence subscription
    /join <room>           Join a chat room
    /leave <id>            Leave a chat room
    /say <id> <text>       Send a message to a chat room
    /roster                List roster buddies
    /quit                  Disconnect and exit`

var errUsage = errors.New("invalid arguments")

// execute runs a single command line. It returns true when the
// application should stop.
func (a *Application) execute(line string) (quit bool) {
	line = strings.TrimSpace(line)
	if len(line) == 0 {
		return false
	}
	args := strings.SplitN(line, " ", 3)
	cmd := args[0]
	args = args[1:]

	var err error
	switch cmd {
	case "/msg":
		if err = requireArgs(args, 2); err == nil {
			err = a.cl.SendMessage(args[0], args[1])
		}
	case "/add":
		if err = requireArgs(args, 1); err == nil {
			err = a.cl.AddBuddy(args[0])
		}
	case "/remove":
		if err = requireArgs(args, 1); err == nil {
			err = a.cl.RemoveBuddy(args[0])
		}
	case "/sub":
		if err = requireArgs(args, 1); err == nil {
			err = a.cl.Subscribe(args[0])
		}
	case "/unsub":
		if err = requireArgs(args, 1); err == nil {
			err = a.cl.Unsubscribe(args[0])
		}
	case "/join":
		if err = requireArgs(args, 1); err == nil {
			_, err = a.cl.JoinChat(args[0])
		}
	case "/leave":
		var id int
		if id, err = roomID(args); err == nil {
			err = a.cl.LeaveChat(id)
		}
	case "/say":
		var id int
		if id, err = roomID(args); err == nil {
			if err = requireArgs(args, 2); err == nil {
				err = a.cl.SendChatMessage(id, args[1])
			}
		}
	case "/roster":
		a.printRoster()
	case "/quit":
		a.cl.Disconnect()
		return true
	case "/help":
		a.pr.printf("%s", commandsStr)
	default:
		err = errors.Errorf("unknown command %s", cmd)
	}
	if err != nil {
		a.pr.printf("! %s: %v", cmd, err)
	}
	return false
}

func (a *Application) printRoster() {
	for _, b := range a.cl.Roster().Buddies() {
		status := "offline"
		if b.IsOnline() {
			status = b.State.String()
		}
		a.pr.printf("  %-24s %-32s %-12s %s", b.Name, b.JID, b.Group, status)
	}
	for _, room := range a.cl.Roster().Rooms() {
		a.pr.printf("  [%d] %s: %s", room.ID, room.JID.ToBareJID(), strings.Join(room.Participants(), ", "))
	}
}

func requireArgs(args []string, n int) error {
	if len(args) < n {
		return errUsage
	}
	for _, arg := range args[:n] {
		if len(strings.TrimSpace(arg)) == 0 {
			return errUsage
		}
	}
	return nil
}

func roomID(args []string) (int, error) {
	if err := requireArgs(args, 1); err != nil {
		return 0, err
	}
	id, err := strconv.Atoi(args[0])
	if err != nil {
		return 0, errors.Wrapf(errUsage, "room id %q", args[0])
	}
	return id, nil
}
