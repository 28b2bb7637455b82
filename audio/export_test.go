// SPDX-License-Identifier: EPL-2.0

package audio

import "sync"

// MutexOf returns the tree mutex n currently shares, or nil.
func MutexOf(n node) *sync.Mutex { return n.base().treeMutex() }

// VoiceMutex returns the mutex v hands to its attachment.
func VoiceMutex(v *Voice) *sync.Mutex { return &v.mu }
