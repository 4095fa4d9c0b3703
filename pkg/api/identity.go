package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/opencourt/playday/pkg/core/model"
	"github.com/opencourt/playday/pkg/db"
)

// memberHeader carries the authenticated member id. Session handling
// itself lives in front of this service; by the time a request arrives
// here the gateway has verified the member and stamped the header.
const memberHeader = "X-Member-ID"

// IdentityProvider resolves the acting member and role for a request.
// An anonymous request resolves to a zero Actor, which every mutating
// operation declines.
type IdentityProvider interface {
	ResolveActor(r *http.Request) (model.Actor, error)
}

// MemberDirectory is the lookup the directory-backed provider needs
type MemberDirectory interface {
	GetMember(ctx context.Context, id string) (*db.Member, error)
}

// DirectoryIdentity resolves actors against the member directory
type DirectoryIdentity struct {
	directory MemberDirectory
}

// NewDirectoryIdentity constructs a DirectoryIdentity
func NewDirectoryIdentity(directory MemberDirectory) *DirectoryIdentity {
	return &DirectoryIdentity{directory: directory}
}

// ResolveActor maps the member header to an Actor with the member's role
func (p *DirectoryIdentity) ResolveActor(r *http.Request) (model.Actor, error) {
	memberID := r.Header.Get(memberHeader)
	if memberID == "" {
		return model.Actor{}, nil
	}

	member, err := p.directory.GetMember(r.Context(), memberID)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return model.Actor{}, nil
		}
		return model.Actor{}, err
	}

	return model.Actor{ID: member.ID, Role: model.Role(member.Role)}, nil
}
