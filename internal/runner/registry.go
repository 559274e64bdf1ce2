package runner

import (
	"os"
	"sync"

	"golang.org/x/sys/unix"
)

// Registry maps live job ids to process handles so uploads can be cancelled
// out of band. Entries are added at dispatch and removed unconditionally at
// process exit; a lookup miss means the job already finished or never
// started.
type Registry struct {
	mu    sync.Mutex
	procs map[string]*os.Process
}

// NewRegistry constructs an empty registry. One instance is shared per
// session and injected wherever cancellation is needed.
func NewRegistry() *Registry {
	return &Registry{procs: make(map[string]*os.Process)}
}

// Cancel kills the process group of a live job and removes the entry.
// It returns whether a live job was found; repeat calls and unknown ids are
// no-ops returning false.
func (r *Registry) Cancel(jobID string) bool {
	r.mu.Lock()
	proc, ok := r.procs[jobID]
	if ok {
		delete(r.procs, jobID)
	}
	r.mu.Unlock()
	if !ok {
		return false
	}
	// The process leads its own group (Setpgid at spawn), so a negative-pid
	// kill takes any children down with it.
	if err := unix.Kill(-proc.Pid, unix.SIGKILL); err != nil {
		_ = proc.Kill()
	}
	return true
}

// Active returns the ids of currently registered jobs.
func (r *Registry) Active() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	ids := make([]string, 0, len(r.procs))
	for id := range r.procs {
		ids = append(ids, id)
	}
	return ids
}

// Len returns the number of live jobs.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.procs)
}

func (r *Registry) add(jobID string, proc *os.Process) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.procs[jobID] = proc
}

func (r *Registry) remove(jobID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.procs, jobID)
}
