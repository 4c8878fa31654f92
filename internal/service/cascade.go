// internal/service/cascade.go
package service

import (
	"context"

	"github.com/tomvanloon/signnet/internal/repository"
	"gorm.io/gorm"
)

// The entity store enforces no referential integrity, so every deletion
// path pairs with its cascade here. These are the only places a
// connection, project, or their dependents are removed.

// deleteConnectionCascade removes a connection's chat and then the row.
func deleteConnectionCascade(ctx context.Context, tx *gorm.DB, connectionID uint64) error {
	if err := repository.NewConnectionChatRepository(tx).DeleteByConnection(ctx, connectionID); err != nil {
		return err
	}
	return repository.NewConnectionRepository(tx).Delete(ctx, connectionID)
}

// deleteProjectCascade removes a project's chat, its membership rows, and
// then the row itself.
func deleteProjectCascade(ctx context.Context, tx *gorm.DB, projectID uint64) error {
	if err := repository.NewProjectChatRepository(tx).DeleteByProject(ctx, projectID); err != nil {
		return err
	}
	if err := repository.NewProjectMemberRepository(tx).DeleteByProject(ctx, projectID); err != nil {
		return err
	}
	return repository.NewProjectRepository(tx).Delete(ctx, projectID)
}

// dissolveProjectIfAbandoned deletes the project when no Accepted member
// rows remain. A project whose remaining rows are all invites or history is
// considered abandoned. Returns whether the project was dissolved.
func dissolveProjectIfAbandoned(ctx context.Context, tx *gorm.DB, projectID uint64) (bool, error) {
	count, err := repository.NewProjectMemberRepository(tx).CountAccepted(ctx, projectID)
	if err != nil {
		return false, err
	}
	if count > 0 {
		return false, nil
	}
	if err := deleteProjectCascade(ctx, tx, projectID); err != nil {
		return false, err
	}
	return true, nil
}
