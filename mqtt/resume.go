package mqtt

import (
	"github.com/vmihailenco/msgpack/v5"

	"github.com/gonzalop/mqttv5/clientstate"
)

// MarshalResumeHints serializes a ResumeHints snapshot for a caller's
// own diagnostics or reconnect-backoff bookkeeping. The client itself
// never reads this back in — see clientstate.ResumeHints's doc comment —
// so this is offered purely as a convenience encoding, not a session
// persistence mechanism.
func MarshalResumeHints(hints clientstate.ResumeHints) ([]byte, error) {
	return msgpack.Marshal(hints)
}

// UnmarshalResumeHints decodes a snapshot produced by MarshalResumeHints.
func UnmarshalResumeHints(data []byte) (clientstate.ResumeHints, error) {
	var hints clientstate.ResumeHints
	err := msgpack.Unmarshal(data, &hints)
	return hints, err
}

// ResumeHints reports a snapshot of the current connection's state,
// suitable for marshaling via MarshalResumeHints.
func (c *PollClient) ResumeHints() clientstate.ResumeHints {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.ResumeHints()
}
