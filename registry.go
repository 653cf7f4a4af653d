// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package imrender

import (
	"fmt"

	"github.com/gogpu/imrender/drawdata"
	"github.com/gogpu/wgpu/hal"
)

// Registry maps GUI texture handles to textures. Handles are issued from a
// counter that starts at 1 and never reuses a value, so NullTextureID is
// never issued.
type Registry struct {
	textures map[drawdata.TextureID]Texture
	next     drawdata.TextureID
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		textures: make(map[drawdata.TextureID]Texture, 1),
		next:     1,
	}
}

// Insert registers t under a fresh handle.
func (r *Registry) Insert(t Texture) drawdata.TextureID {
	id := r.next
	r.next++
	r.textures[id] = t
	return id
}

// Set registers t under id, replacing any previous entry. The counter moves
// past id so Insert never hands out a handle that was set explicitly.
func (r *Registry) Set(id drawdata.TextureID, t Texture) {
	r.textures[id] = t
	if id >= r.next {
		r.next = id + 1
	}
}

// Remove detaches the texture registered under id and hands it back to the
// caller. Removing an unknown id is a no-op.
func (r *Registry) Remove(id drawdata.TextureID) (Texture, bool) {
	t, ok := r.textures[id]
	if ok {
		delete(r.textures, id)
	}
	return t, ok
}

// Get returns the texture registered under id. Asking for an id that was
// never issued, or was removed, is a programming error and panics.
func (r *Registry) Get(id drawdata.TextureID) Texture {
	t, ok := r.textures[id]
	if !ok {
		panic(fmt.Sprintf("imrender: unknown texture id %d", id))
	}
	return t
}

// Lookup returns the texture registered under id, if any.
func (r *Registry) Lookup(id drawdata.TextureID) (Texture, bool) {
	t, ok := r.textures[id]
	return t, ok
}

// Len returns the number of registered textures.
func (r *Registry) Len() int { return len(r.textures) }

// Destroy destroys and unregisters every texture.
func (r *Registry) Destroy(device hal.Device) {
	for id, t := range r.textures {
		t.Destroy(device)
		delete(r.textures, id)
	}
}
