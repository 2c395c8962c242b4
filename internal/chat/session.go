package chat

// Session is the client's thread collection together with the currently
// selected thread. Every transition returns a new Session; the receiver is
// left untouched.
type Session struct {
	Threads   []Thread
	CurrentID string
}

// NewSession starts a session over previously loaded threads with nothing
// selected.
func NewSession(threads []Thread) Session {
	return Session{Threads: append([]Thread(nil), threads...)}
}

// Current returns a copy of the selected thread, or nil when none is selected.
func (s Session) Current() *Thread {
	if s.CurrentID == "" {
		return nil
	}
	return FindThread(s.Threads, s.CurrentID)
}

// Commit stores thread as the most recent one and selects it.
func (s Session) Commit(thread Thread) Session {
	threads := make([]Thread, 0, len(s.Threads)+1)
	threads = append(threads, thread)
	threads = append(threads, DeleteThread(s.Threads, thread.ID)...)
	return Session{Threads: threads, CurrentID: thread.ID}
}

// Select makes id the current thread. Unknown ids leave nothing selected.
func (s Session) Select(id string) Session {
	next := Session{Threads: s.Threads}
	if FindThread(s.Threads, id) != nil {
		next.CurrentID = id
	}
	return next
}

// New clears the selection so the next turn starts a fresh thread.
func (s Session) New() Session {
	return Session{Threads: s.Threads}
}

// Delete removes the thread and clears the selection when it was current.
func (s Session) Delete(id string) Session {
	next := Session{Threads: DeleteThread(s.Threads, id), CurrentID: s.CurrentID}
	if s.CurrentID == id {
		next.CurrentID = ""
	}
	return next
}
