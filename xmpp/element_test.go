/*
 * Copyright (c) 2018 Miguel Ángel Ortuño.
 * See the LICENSE file for more information.
 */

package xmpp_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/antchfx/xmlquery"
	"github.com/ortuman/gjab/xmpp"
	"github.com/stretchr/testify/require"
)

func TestElement_Attributes(t *testing.T) {
	e := xmpp.NewElementName("iq")
	_, ok := e.Attribute("id")
	require.False(t, ok)
	require.Equal(t, "", e.ID())

	e.SetAttribute("id", "1")
	e.SetAttribute("id", "2")
	e.SetAttribute("type", "")

	v, ok := e.Attribute("id")
	require.True(t, ok)
	require.Equal(t, "2", v)

	v, ok = e.Attribute("type")
	require.True(t, ok)
	require.Equal(t, "", v)
	require.Equal(t, 2, e.Attributes().Count())

	e.RemoveAttribute("type")
	_, ok = e.Attributes().Lookup("type")
	require.False(t, ok)
}

func TestElement_Children(t *testing.T) {
	e := xmpp.NewElementNamespace("query", xmpp.RosterNamespace)
	item1 := e.AppendNewElement("item")
	item1.SetAttribute("jid", "a@b")
	e.AppendNewElement("other")
	item2 := e.AppendNewElement("item")

	require.Equal(t, 3, e.Elements().Count())
	require.Equal(t, item1, e.Elements().Child("item"))
	require.Equal(t, []*xmpp.Element{item1, item2}, e.Elements().Children("item"))
	require.Nil(t, e.Elements().Child("group"))
	require.Nil(t, e.Elements().ChildNamespace("item", "urn:other"))

	e.RemoveElements("item")
	require.Equal(t, 1, e.Elements().Count())
	require.Equal(t, "other", e.Elements().All()[0].Name())
}

func TestElement_Text(t *testing.T) {
	e := xmpp.NewElementName("body")
	e.InsertText("Hello")
	e.InsertText(", ")
	e.AppendNewElement("br")
	e.InsertText("world")
	require.Equal(t, "Hello, world", e.Text())
	require.Equal(t, "<body>Hello, <br/>world</body>", e.String())

	e.SetText("bye")
	require.Equal(t, "bye", e.Text())
	require.Equal(t, "<body><br/>bye</body>", e.String())
}

func TestElement_Serialize(t *testing.T) {
	e := xmpp.NewElementName("message")
	e.SetTo("bob@jabber.org")
	e.SetType("chat")
	e.AppendNewElement("body").InsertText(`1 < 2 & "quoted"`)
	require.Equal(t, `<message to="bob@jabber.org" type="chat"><body>1 &lt; 2 &amp; &#34;quoted&#34;</body></message>`, e.String())

	empty := xmpp.NewElementName("presence")
	require.Equal(t, "<presence/>", empty.String())

	buf := new(bytes.Buffer)
	empty.ToXML(buf, false)
	require.Equal(t, "<presence>", buf.String())
}

func TestElement_SerializeParsesWithIndependentParser(t *testing.T) {
	e := xmpp.NewElementNamespace("query", xmpp.AuthNamespace)
	e.SetAttribute("note", `a "b" <c>`)
	e.AppendNewElement("username").InsertText("alice")
	e.AppendNewElement("digest").InsertText("abc&def")

	doc, err := xmlquery.Parse(strings.NewReader(e.String()))
	require.Nil(t, err)

	query := xmlquery.FindOne(doc, "/query")
	require.NotNil(t, query)
	require.Equal(t, `a "b" <c>`, query.SelectAttr("note"))
	require.Equal(t, "alice", xmlquery.FindOne(doc, "/query/username").InnerText())
	require.Equal(t, "abc&def", xmlquery.FindOne(doc, "/query/digest").InnerText())
}

func TestElement_Free(t *testing.T) {
	e := xmpp.NewElementName("iq")
	q := e.AppendNewElement("query")
	q.AppendNewElement("item").InsertText("pending")
	e.InsertText("tail")

	e.Free()
	require.Equal(t, 0, e.Elements().Count())
	require.Equal(t, "", e.Text())
	require.Equal(t, 0, q.Elements().Count())
	require.Equal(t, "<iq/>", e.String())
}
