package models

// RepositoryEvent is a coarse refresh signal produced by the repository watcher.
type RepositoryEvent interface {
	repositoryEvent()
}

// RescanRequired asks for a full re-listing of worktrees.
type RescanRequired struct{}

// ListChanged reports that worktrees were added or removed.
type ListChanged struct{}

// StatusChanged reports that the status of one worktree changed.
type StatusChanged struct{ Path string }

// HeadChanged reports that HEAD moved in one worktree.
type HeadChanged struct{ Path string }

func (RescanRequired) repositoryEvent() {}
func (ListChanged) repositoryEvent()    {}
func (StatusChanged) repositoryEvent()  {}
func (HeadChanged) repositoryEvent()    {}
