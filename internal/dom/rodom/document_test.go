package rodom

import (
	"testing"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spigell/applyfill/internal/dom"
)

const page = `<html><body><form id="f">
  <label for="email">Email</label><input id="email" name="email">
  <input id="gone" style="display:none">
  <select id="country"><option value="">Choose</option><option value="de">Germany</option></select>
  <div id="host"></div>
</form></body></html>`

const setup = `() => {
  const root = document.getElementById('host').attachShadow({mode: 'open'});
  root.innerHTML = '<input id="inner" name="inner">';
  const email = document.getElementById('email');
  email.__props = {onChange: (e) => { window.seen = e.target.value }};
  window.events = [];
  ['focus', 'input', 'change', 'blur'].forEach(t =>
    email.addEventListener(t, () => window.events.push(t)));
}`

func open(t *testing.T) (*rod.Page, *Document) {
	t.Helper()
	bin, ok := launcher.LookPath()
	if !ok {
		t.Skip("no local chrome")
	}

	u, err := launcher.New().Bin(bin).Headless(true).Launch()
	require.NoError(t, err)
	b := rod.New().ControlURL(u)
	require.NoError(t, b.Connect())
	t.Cleanup(func() { _ = b.Close() })

	p, err := b.Page(proto.TargetCreateTarget{URL: ""})
	require.NoError(t, err)
	require.NoError(t, p.SetDocumentContent(page))
	p.MustEval(setup)
	return p, New(p)
}

func TestLiveQueries(t *testing.T) {
	p, doc := open(t)

	root := doc.Root()
	require.NotNil(t, root)
	assert.Equal(t, "html", root.Tag())

	inputs := dom.QueryDeep(root, "input")
	require.Len(t, inputs, 3)
	assert.Equal(t, "inner", dom.AttrOr(inputs[2], "id"))
	assert.Nil(t, inputs[2].Parent())

	email := inputs[0]
	assert.True(t, email.Visible())
	assert.False(t, inputs[1].Visible())
	assert.Equal(t, email.Handle(), doc.Wrap(p.MustElement("#email")).Handle())

	country := dom.QueryDeep(root, "select")[0]
	assert.Equal(t, "", country.Value())
	assert.Len(t, country.Options(), 2)
}

func TestLiveWriteReplaysEvents(t *testing.T) {
	p, doc := open(t)
	email := doc.Wrap(p.MustElement("#email"))

	require.NoError(t, email.Focus())
	require.NoError(t, email.SetNativeValue("john@example.com"))
	require.NoError(t, email.Dispatch(dom.EventInput))
	require.NoError(t, email.Dispatch(dom.EventChange))
	found, err := email.InvokeFrameworkHandler(dom.EventChange)
	require.NoError(t, err)
	assert.True(t, found)
	require.NoError(t, email.Dispatch(dom.EventBlur))

	assert.Equal(t, "john@example.com", email.Value())
	assert.Equal(t, "john@example.com", p.MustEval(`() => window.seen`).Str())
	assert.False(t, email.Focused())

	events := p.MustEval(`() => window.events.slice(0, 4).join(',')`).Str()
	assert.Equal(t, "focus,input,change,blur", events)
}

func TestLiveDetached(t *testing.T) {
	p, doc := open(t)
	email := doc.Wrap(p.MustElement("#email"))
	p.MustEval(`() => document.getElementById('email').remove()`)

	assert.False(t, email.Connected())
	assert.ErrorIs(t, email.SetNativeValue("x"), dom.ErrDetached)
}
