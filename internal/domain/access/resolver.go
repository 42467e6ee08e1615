package access

import (
	"context"
	"errors"
	"sync"
)

// Resolver answers "which user IDs may the acting user see" by traversing
// the role graph downward from the acting user's authorization role.
//
// The graph itself is read far more often than it is written, so the
// adjacency snapshot is cached and refreshed only when the store's graph
// version moves.
type Resolver struct {
	store StoreAPI

	mu      sync.Mutex
	version int64
	snap    *graphSnapshot
}

type graphSnapshot struct {
	roles    map[string]Role
	children map[string][]string
}

func NewResolver(store StoreAPI) *Resolver {
	return &Resolver{store: store, version: -1}
}

// ResolveVisible returns the set of user IDs the acting user is authorized
// to see. A missing user or role resolves to an empty set, never to "see
// all".
func (r *Resolver) ResolveVisible(ctx context.Context, actingUserID string) (map[string]struct{}, error) {
	roleID, err := r.store.UserRoleID(ctx, actingUserID)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) || errors.Is(err, ErrRoleNotFound) {
			return map[string]struct{}{}, nil
		}
		return nil, err
	}

	snap, err := r.snapshot(ctx)
	if err != nil {
		return nil, err
	}

	role, ok := snap.roles[roleID]
	if !ok {
		return map[string]struct{}{}, nil
	}

	if role.IsRoot() {
		all, err := r.store.AllUserIDs(ctx)
		if err != nil {
			return nil, err
		}
		visible := make(map[string]struct{}, len(all))
		for _, id := range all {
			visible[id] = struct{}{}
		}
		visible[actingUserID] = struct{}{}
		return visible, nil
	}

	// BFS along inverse parent edges. The seen set keeps accidental cycles
	// from corrupted data out of the frontier.
	reached := []string{roleID}
	seen := map[string]struct{}{roleID: {}}
	frontier := []string{roleID}
	for len(frontier) > 0 {
		current := frontier[0]
		frontier = frontier[1:]
		for _, childID := range snap.children[current] {
			if _, ok := seen[childID]; ok {
				continue
			}
			seen[childID] = struct{}{}
			reached = append(reached, childID)
			frontier = append(frontier, childID)
		}
	}

	visible := map[string]struct{}{actingUserID: {}}
	for _, rid := range reached {
		for _, member := range snap.roles[rid].Members {
			visible[member] = struct{}{}
		}
	}

	owners, err := r.store.UserIDsByRole(ctx, reached)
	if err != nil {
		return nil, err
	}
	for _, id := range owners {
		visible[id] = struct{}{}
	}
	return visible, nil
}

// VisibleList is ResolveVisible flattened for store queries.
func (r *Resolver) VisibleList(ctx context.Context, actingUserID string) ([]string, error) {
	set, err := r.ResolveVisible(ctx, actingUserID)
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, len(set))
	for id := range set {
		out = append(out, id)
	}
	return out, nil
}

func (r *Resolver) snapshot(ctx context.Context) (*graphSnapshot, error) {
	version, err := r.store.GraphVersion(ctx)
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.snap != nil && r.version == version {
		return r.snap, nil
	}

	roles, err := r.store.ListRoles(ctx)
	if err != nil {
		return nil, err
	}

	snap := &graphSnapshot{
		roles:    make(map[string]Role, len(roles)),
		children: make(map[string][]string),
	}
	for _, role := range roles {
		snap.roles[role.ID] = role
		for _, parent := range role.Parents {
			if parent == role.ID {
				continue
			}
			snap.children[parent] = append(snap.children[parent], role.ID)
		}
	}

	r.version = version
	r.snap = snap
	return snap, nil
}
