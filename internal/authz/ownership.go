package authz

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/buildtrack/buildtrack/internal/db/models"
)

// Row-level ownership is a second policy axis on top of the grant matrix.
// A broad resource-level grant never bypasses the row predicate: the matrix
// decides whether a role may touch the resource type at all, the predicate
// decides which rows. Admin roles see every row; everyone else is narrowed.

// ProjectRowCheck returns the ownership predicate for a single project row.
// write distinguishes mutating requests, which clients never get.
func (s *Service) ProjectRowCheck(projectID string, write bool) RowCheck {
	return func(g *Grantee) error {
		if g.IsAdmin() {
			return nil
		}

		switch g.Role.Name {
		case RoleProjectManager:
			var project models.Project

			err := s.db.Select("id", "manager_id").Where("id = ?", projectID).First(&project).Error
			if err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return ErrRowNotFound
				}

				return fmt.Errorf("%w: %v", ErrAuthorizationUnavailable, err)
			}

			if project.ManagerID != g.Principal.ID {
				return ErrNotOwner
			}

			return nil

		case RoleClient:
			if write {
				return ErrNotOwner
			}

			owns, err := s.clientProjects.OwnsProject(g.Principal.ID, projectID)
			if err != nil {
				return err
			}

			if !owns {
				return ErrNotOwner
			}

			return nil

		default:
			// roles outside the narrowing table are not row-scoped; the
			// matrix already decided whether they may touch projects at all
			return nil
		}
	}
}

// TaskRowCheck returns the ownership predicate for a single task row.
// Task ownership follows the owning project for managers; subcontractors
// own only tasks assigned to them and may never delete one, whatever their
// resource-level grants say.
func (s *Service) TaskRowCheck(taskID string, action Action) RowCheck {
	return func(g *Grantee) error {
		if g.IsAdmin() {
			return nil
		}

		var task models.Task

		err := s.db.Preload("Project").Where("id = ?", taskID).First(&task).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrRowNotFound
			}

			return fmt.Errorf("%w: %v", ErrAuthorizationUnavailable, err)
		}

		switch g.Role.Name {
		case RoleProjectManager:
			if task.Project.ManagerID != g.Principal.ID {
				return ErrNotOwner
			}

			return nil

		case RoleSubcontractor:
			if task.AssigneeID == nil || *task.AssigneeID != g.Principal.ID {
				return ErrNotOwner
			}

			if action == ActionDelete {
				return ErrNotOwner
			}

			return nil

		case RoleClient:
			if action != ActionRead {
				return ErrNotOwner
			}

			// same linkage gap as project rows: cannot resolve which
			// client the user belongs to
			return ErrNotImplemented

		default:
			return nil
		}
	}
}
