package lsp

import (
	"bufio"
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const trailingOnly = `enable_default_linters: false
linters:
  TrailingWhitespace:
    enabled: true
`

type harness struct {
	t   *testing.T
	s   *Server
	out *bytes.Buffer
	dir string
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	dir := t.TempDir()
	cfg := filepath.Join(dir, ".erb-lint.yml")
	require.NoError(t, os.WriteFile(cfg, []byte(trailingOnly), 0o600))
	out := &bytes.Buffer{}
	s := NewServer(strings.NewReader(""), out, ServerOptions{
		Debounce:   time.Hour,
		ConfigPath: cfg,
		Log:        &bytes.Buffer{},
	})
	t.Cleanup(s.stopPending)
	return &harness{t: t, s: s, out: out, dir: dir}
}

func (h *harness) call(id int, method string, params any) {
	h.t.Helper()
	raw, err := json.Marshal(params)
	require.NoError(h.t, err)
	msg := &rpcMessage{JSONRPC: "2.0", Method: method, Params: raw}
	if id > 0 {
		msg.ID = mustJSON(h.t, id)
	}
	require.NoError(h.t, h.s.handleMessage(msg))
}

func mustJSON(t *testing.T, v any) []byte {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return b
}

// messages drains everything the server wrote so far.
func (h *harness) messages() []rpcMessage {
	h.t.Helper()
	r := bufio.NewReader(bytes.NewReader(h.out.Bytes()))
	h.out.Reset()
	var msgs []rpcMessage
	for {
		payload, err := readMessage(r)
		if err != nil {
			break
		}
		var msg rpcMessage
		require.NoError(h.t, json.Unmarshal(payload, &msg))
		msgs = append(msgs, msg)
	}
	return msgs
}

func (h *harness) open(name, text string) string {
	uri := pathToURI(filepath.Join(h.dir, name))
	h.call(0, "textDocument/didOpen", didOpenTextDocumentParams{
		TextDocument: textDocumentItem{URI: uri, LanguageID: "erb", Version: 1, Text: text},
	})
	return uri
}

func publishes(t *testing.T, msgs []rpcMessage) []publishDiagnosticsParams {
	t.Helper()
	var out []publishDiagnosticsParams
	for _, m := range msgs {
		if m.Method != "textDocument/publishDiagnostics" {
			continue
		}
		var p publishDiagnosticsParams
		require.NoError(t, json.Unmarshal(m.Params, &p))
		out = append(out, p)
	}
	return out
}

func TestInitializeAdvertisesCapabilities(t *testing.T) {
	h := newHarness(t)
	h.call(1, "initialize", initializeParams{RootURI: pathToURI(h.dir)})

	msgs := h.messages()
	require.Len(t, msgs, 1)
	var res initializeResult
	require.NoError(t, json.Unmarshal(msgs[0].Result, &res))
	assert.Equal(t, "erblint", res.ServerInfo.Name)
	assert.True(t, res.Capabilities.DocumentFormattingProvider)
	require.NotNil(t, res.Capabilities.CodeActionProvider)
	assert.Equal(t, []string{kindQuickFix, kindFixAll}, res.Capabilities.CodeActionProvider.CodeActionKinds)
	assert.Equal(t, 2, res.Capabilities.TextDocumentSync.Change)
}

func TestDidOpenPublishesDiagnostics(t *testing.T) {
	h := newHarness(t)
	uri := h.open("a.html.erb", "<p>hi</p>  \n<p>ok</p>\n")
	h.s.flushDiagnostics()

	pubs := publishes(t, h.messages())
	require.Len(t, pubs, 1)
	p := pubs[0]
	assert.Equal(t, uri, p.URI)
	require.NotNil(t, p.Version)
	assert.Equal(t, 1, *p.Version)
	require.Len(t, p.Diagnostics, 1)
	d := p.Diagnostics[0]
	assert.Equal(t, "TrailingWhitespace", d.Code)
	assert.Equal(t, "erblint", d.Source)
	assert.Equal(t, severityError, d.Severity)
	assert.Equal(t, lspRange{Start: position{0, 9}, End: position{0, 11}}, d.Range)
}

func TestDidChangeRepublishesAndCloseClears(t *testing.T) {
	h := newHarness(t)
	uri := h.open("a.html.erb", "<p>hi</p>  \n")
	h.s.flushDiagnostics()
	h.messages()

	h.call(0, "textDocument/didChange", didChangeTextDocumentParams{
		TextDocument: versionedTextDocumentIdentifier{URI: uri, Version: 2},
		ContentChanges: []textDocumentContentChangeEvent{{
			Range: &lspRange{Start: position{0, 9}, End: position{0, 11}},
			Text:  "",
		}},
	})
	h.s.flushDiagnostics()
	pubs := publishes(t, h.messages())
	require.Len(t, pubs, 1)
	assert.Equal(t, 2, *pubs[0].Version)
	assert.Empty(t, pubs[0].Diagnostics)

	h.call(0, "textDocument/didClose", didCloseTextDocumentParams{TextDocument: textDocumentIdentifier{URI: uri}})
	pubs = publishes(t, h.messages())
	require.Len(t, pubs, 1)
	assert.Nil(t, pubs[0].Version)
	assert.Empty(t, pubs[0].Diagnostics)
}

func TestCodeActionOffersQuickFixAndFixAll(t *testing.T) {
	h := newHarness(t)
	uri := h.open("a.html.erb", "a  \nb \n")

	h.call(7, "textDocument/codeAction", codeActionParams{
		TextDocument: textDocumentIdentifier{URI: uri},
		Range:        lspRange{Start: position{0, 0}, End: position{0, 3}},
	})
	msgs := h.messages()
	require.Len(t, msgs, 1)
	require.Nil(t, msgs[0].Error)
	var actions []codeAction
	require.NoError(t, json.Unmarshal(msgs[0].Result, &actions))
	require.Len(t, actions, 2)

	quick := actions[0]
	assert.Equal(t, kindQuickFix, quick.Kind)
	assert.Equal(t, "Autocorrect TrailingWhitespace", quick.Title)
	require.Len(t, quick.Diagnostics, 1)
	edits := quick.Edit.Changes[uri]
	require.Len(t, edits, 1)
	assert.Equal(t, "a\nb \n", edits[0].NewText)
	assert.Equal(t, position{2, 0}, edits[0].Range.End)

	all := actions[1]
	assert.Equal(t, kindFixAll, all.Kind)
	assert.Equal(t, "a\nb\n", all.Edit.Changes[uri][0].NewText)
}

func TestCodeActionHonorsOnly(t *testing.T) {
	h := newHarness(t)
	uri := h.open("a.html.erb", "a  \n")

	h.call(3, "textDocument/codeAction", codeActionParams{
		TextDocument: textDocumentIdentifier{URI: uri},
		Range:        lspRange{Start: position{0, 0}, End: position{0, 3}},
		Context:      codeActionContext{Only: []string{"source.fixAll"}},
	})
	var actions []codeAction
	require.NoError(t, json.Unmarshal(h.messages()[0].Result, &actions))
	require.Len(t, actions, 1)
	assert.Equal(t, kindFixAll, actions[0].Kind)
}

func TestFormattingReturnsWholeDocumentEdit(t *testing.T) {
	h := newHarness(t)
	uri := h.open("a.html.erb", "a  \r\nb\r\n")

	h.call(4, "textDocument/formatting", documentFormattingParams{TextDocument: textDocumentIdentifier{URI: uri}})
	var edits []textEdit
	require.NoError(t, json.Unmarshal(h.messages()[0].Result, &edits))
	require.Len(t, edits, 1)
	assert.Equal(t, "a\r\nb\r\n", edits[0].NewText)

	clean := h.open("b.html.erb", "ok\n")
	h.call(5, "textDocument/formatting", documentFormattingParams{TextDocument: textDocumentIdentifier{URI: clean}})
	require.NoError(t, json.Unmarshal(h.messages()[0].Result, &edits))
	assert.Empty(t, edits)
}

func TestConfigErrorBecomesDiagnostic(t *testing.T) {
	h := newHarness(t)
	missing := filepath.Join(h.dir, "nope.yml")
	h.call(0, "workspace/didChangeConfiguration", didChangeConfigurationParams{
		Settings: mustJSON(t, map[string]any{"erblint": map[string]any{"configPath": missing}}),
	})
	h.open("a.html.erb", "a\n")
	h.s.flushDiagnostics()

	pubs := publishes(t, h.messages())
	require.Len(t, pubs, 1)
	require.Len(t, pubs[0].Diagnostics, 1)
	assert.Contains(t, pubs[0].Diagnostics[0].Message, "erblint is not running")
	assert.Equal(t, lspRange{}, pubs[0].Diagnostics[0].Range)
}

func TestShutdownThenExit(t *testing.T) {
	h := newHarness(t)
	h.call(1, "shutdown", nil)
	h.call(2, "textDocument/formatting", documentFormattingParams{})
	msgs := h.messages()
	require.Len(t, msgs, 2)
	require.NotNil(t, msgs[1].Error)
	assert.Equal(t, codeInvalidRequest, msgs[1].Error.Code)

	err := h.s.handleMessage(&rpcMessage{JSONRPC: "2.0", Method: "exit"})
	assert.ErrorIs(t, err, ErrExit)
}

func TestExitWithoutShutdown(t *testing.T) {
	h := newHarness(t)
	err := h.s.handleMessage(&rpcMessage{JSONRPC: "2.0", Method: "exit"})
	assert.ErrorIs(t, err, ErrExitWithoutShutdown)
}

func TestUnknownRequestIsMethodNotFound(t *testing.T) {
	h := newHarness(t)
	h.call(9, "textDocument/hover", map[string]any{})
	msgs := h.messages()
	require.Len(t, msgs, 1)
	require.NotNil(t, msgs[0].Error)
	assert.Equal(t, codeMethodNotFound, msgs[0].Error.Code)
}
