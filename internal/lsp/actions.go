package lsp

import (
	"encoding/json"
	"fmt"
)

func (s *Server) handleCodeAction(msg *rpcMessage) error {
	var params codeActionParams
	if err := json.Unmarshal(msg.Params, &params); err != nil {
		return s.sendError(msg.ID, codeInvalidParams, "invalid params")
	}
	uri := canonicalURI(params.TextDocument.URI)
	a, err := s.currentAnalysis(s.baseCtx, uri)
	if err != nil {
		return s.sendError(msg.ID, codeInternalError, err.Error())
	}
	actions, err := s.codeActions(a, params)
	if err != nil {
		return s.sendError(msg.ID, codeInternalError, err.Error())
	}
	return s.sendResponse(msg.ID, actions)
}

func (s *Server) codeActions(a *analysis, params codeActionParams) ([]codeAction, error) {
	actions := []codeAction{}
	if a == nil || a.excluded || a.engine == nil {
		return actions, nil
	}
	cands, errs, err := a.engine.Candidates()
	if err != nil {
		return nil, err
	}
	for _, e := range errs {
		s.logf("%s: %v", a.path, e)
	}
	if len(cands) == 0 {
		return actions, nil
	}

	if kindAllowed(params.Context.Only, kindQuickFix) {
		for _, c := range cands {
			d := a.diagnostic(c.Offense)
			if !d.Range.overlaps(params.Range) {
				continue
			}
			text, changed, err := a.fixOne(c.Index)
			if err != nil {
				s.logf("%s: %s: %v", a.path, c.Offense.Linter, err)
				continue
			}
			if !changed {
				continue
			}
			actions = append(actions, codeAction{
				Title:       fmt.Sprintf("Autocorrect %s", c.Offense.Linter),
				Kind:        kindQuickFix,
				Diagnostics: []lspDiagnostic{d},
				IsPreferred: true,
				Edit:        a.edit(text),
			})
		}
	}

	if kindAllowed(params.Context.Only, kindFixAll) {
		text, changed, err := a.fixAll(s.baseCtx)
		if err != nil {
			return nil, err
		}
		if changed {
			actions = append(actions, codeAction{
				Title: "Autocorrect all erblint offenses",
				Kind:  kindFixAll,
				Edit:  a.edit(text),
			})
		}
	}
	return actions, nil
}

func (a *analysis) edit(newText string) *workspaceEdit {
	return &workspaceEdit{
		Changes: map[string][]textEdit{a.uri: {replaceAll(a.text, newText)}},
	}
}

func (s *Server) handleFormatting(msg *rpcMessage) error {
	var params documentFormattingParams
	if err := json.Unmarshal(msg.Params, &params); err != nil {
		return s.sendError(msg.ID, codeInvalidParams, "invalid params")
	}
	uri := canonicalURI(params.TextDocument.URI)
	a, err := s.currentAnalysis(s.baseCtx, uri)
	if err != nil {
		return s.sendError(msg.ID, codeInternalError, err.Error())
	}
	edits := []textEdit{}
	if a != nil {
		text, changed, err := a.fixAll(s.baseCtx)
		if err != nil {
			return s.sendError(msg.ID, codeInternalError, err.Error())
		}
		if changed {
			edits = append(edits, replaceAll(a.text, text))
		}
	}
	return s.sendResponse(msg.ID, edits)
}
