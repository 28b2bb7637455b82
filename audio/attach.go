// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"slices"
	"sync"

	"github.com/sirupsen/logrus"
)

// AttachSample adds s to the mix.
func (m *Mixer) AttachSample(s *Sample) error {
	return m.attach("Mixer.AttachSample", s)
}

// AttachStream adds s to the mix.
func (m *Mixer) AttachStream(s *Stream) error {
	return m.attach("Mixer.AttachStream", s)
}

// AttachMixer nests c inside m. Both must share frequency and channel
// configuration.
func (m *Mixer) AttachMixer(c *Mixer) error {
	const op = "Mixer.AttachMixer"

	if c == m {
		return invalidParam(op, "%w", ErrCycle)
	}
	if c.freq != m.freq || c.conf != m.conf {
		return invalidParam(op, "%w: %dHz/%dch into %dHz/%dch",
			ErrFormatMismatch, c.freq, c.conf.Channels(), m.freq, m.conf.Channels())
	}
	for p := m.owner().mixer; p != nil; p = p.owner().mixer {
		if p == c {
			return invalidParam(op, "%w", ErrCycle)
		}
	}

	return m.attach(op, c)
}

func (m *Mixer) attach(op string, n node) error {
	in := n.base()
	unlock := m.lock()
	defer unlock()

	if in.owner().attached() {
		return invalidObject(op, ErrAlreadyAttached)
	}

	m.children = append(m.children, n)
	in.setOwner(parentRef{mixer: m})

	if !n.isComposite() {
		in.restep()
		in.sampler = pickSampler(m.quality)
		in.rejig()
	}
	setMutex(n, m.treeMutex())

	m.log.WithFields(logrus.Fields{
		"function": op,
		"child":    in.kind.String(),
		"children": len(m.children),
	}).Debug("attached")

	return nil
}

// detachChild removes n from m.
func (m *Mixer) detachChild(n node) error {
	unlock := m.lock()
	defer unlock()

	i := slices.Index(m.children, n)
	if i < 0 {
		return invalidObject("Mixer.Detach", errNotChild)
	}
	m.children = slices.Delete(m.children, i, i+1)
	m.release(n)

	return nil
}

// release clears everything attaching gave n. The caller holds the tree
// mutex.
func (m *Mixer) release(n node) {
	in := n.base()
	in.matrix = nil
	if !n.isComposite() {
		in.sampler = nil
	}
	in.setOwner(parentRef{})
	setMutex(n, nil)
}

// detach removes n from whatever it is attached to.
func detach(n node) error {
	p := n.base().owner()
	switch {
	case p.voice != nil:
		p.voice.Detach()
	case p.mixer != nil:
		return p.mixer.detachChild(n)
	}
	return nil
}

// setMutex hands mu to n and, for mixers, to the whole subtree below it.
func setMutex(n node, mu *sync.Mutex) {
	in := n.base()
	in.link.Lock()
	same := in.mu == mu
	in.mu = mu
	in.link.Unlock()
	if same {
		return
	}

	if m, ok := n.(*Mixer); ok {
		for _, c := range m.children {
			setMutex(c, mu)
		}
	}
}
