package lsp

import (
	"context"
	"sort"
	"sync/atomic"
	"time"
)

type diagJob struct {
	uri string
	doc openDoc
}

func (s *Server) scheduleDiagnostics(uris ...string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, uri := range uris {
		s.pending[uri] = struct{}{}
	}
	seq := atomic.AddUint64(&s.analysisSeq, 1)
	atomic.StoreUint64(&s.latestSeq, seq)
	if s.debounceTimer != nil {
		s.debounceTimer.Stop()
	}
	s.debounceTimer = time.AfterFunc(s.debounce, func() {
		s.runDiagnostics(seq)
	})
}

func (s *Server) scheduleAll() {
	s.mu.Lock()
	uris := make([]string, 0, len(s.docs))
	for uri := range s.docs {
		uris = append(uris, uri)
	}
	s.mu.Unlock()
	if len(uris) > 0 {
		s.scheduleDiagnostics(uris...)
	}
}

// flushDiagnostics runs the pending analysis now instead of after the debounce.
func (s *Server) flushDiagnostics() {
	s.mu.Lock()
	if s.debounceTimer != nil {
		s.debounceTimer.Stop()
	}
	s.mu.Unlock()
	s.runDiagnostics(atomic.LoadUint64(&s.latestSeq))
}

func (s *Server) runDiagnostics(seq uint64) {
	if !s.isLatestSeq(seq) {
		return
	}
	s.mu.Lock()
	jobs := make([]diagJob, 0, len(s.pending))
	for uri := range s.pending {
		if doc, ok := s.docs[uri]; ok {
			jobs = append(jobs, diagJob{uri: uri, doc: *doc})
		}
	}
	s.pending = make(map[string]struct{})
	ctx, cancel := context.WithCancel(s.baseCtx)
	s.diagCancel = cancel
	limit := s.maxDiagnostics
	s.mu.Unlock()
	defer cancel()

	sort.Slice(jobs, func(i, j int) bool { return jobs[i].uri < jobs[j].uri })
	for _, job := range jobs {
		if ctx.Err() != nil {
			return
		}
		a, err := s.analyze(ctx, job.uri, job.doc)
		var list []lspDiagnostic
		if err != nil {
			s.logf("diagnostics failed: %s: %v", job.uri, err)
			list = []lspDiagnostic{configDiagnostic(err)}
		} else {
			list = a.diagnostics(limit)
		}
		s.publish(job, a, list)
	}
}

// publish sends diagnostics unless the document changed or closed meanwhile.
func (s *Server) publish(job diagJob, a *analysis, list []lspDiagnostic) {
	s.mu.Lock()
	doc, ok := s.docs[job.uri]
	if !ok || doc.state != job.doc.state {
		trace := s.traceLSP
		s.mu.Unlock()
		if trace {
			s.logf("discard analysis: uri=%s version=%d", job.uri, job.doc.state.version)
		}
		return
	}
	if a != nil {
		s.results[job.uri] = a
	}
	s.published[job.uri] = struct{}{}
	version := job.doc.state.version
	s.mu.Unlock()

	if err := s.sendPublish(job.uri, &version, list); err != nil {
		s.logf("failed to publish diagnostics: %v", err)
		return
	}
	if s.currentTrace() {
		s.logf("publishDiagnostics: uri=%s version=%d diags=%d", job.uri, version, len(list))
	}
}

func (s *Server) clearPublishedDiagnostics() {
	s.mu.Lock()
	if len(s.published) == 0 {
		s.mu.Unlock()
		return
	}
	prev := s.published
	s.published = make(map[string]struct{})
	s.mu.Unlock()
	for uri := range prev {
		if err := s.sendPublish(uri, nil, nil); err != nil {
			s.logf("failed to clear diagnostics: %v", err)
		}
	}
}
