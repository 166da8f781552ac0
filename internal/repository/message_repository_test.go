package repository

import (
	"errors"
	"fmt"
	"testing"

	"github.com/oginakoko/gaphy-trade-hive-sub001/internal/apperr"
	"github.com/oginakoko/gaphy-trade-hive-sub001/internal/models"
	"github.com/oginakoko/gaphy-trade-hive-sub001/internal/moderation"
	"gorm.io/gorm"
)

func seedServerWithMessage(t *testing.T, db *gorm.DB) (*models.Server, *models.User, *models.User, *models.ServerMessage) {
	t.Helper()
	serverRepo := NewServerRepository(db)
	msgRepo := NewMessageRepository(db)

	owner := createTestUser(t, db, "owner")
	author := createTestUser(t, db, "author")

	server := &models.Server{Name: "Scalps", OwnerID: owner.ID}
	if err := serverRepo.CreateWithOwner(server); err != nil {
		t.Fatalf("CreateWithOwner error = %v", err)
	}
	if err := serverRepo.AddMember(server.ID, author.ID, models.RoleMember); err != nil {
		t.Fatalf("AddMember error = %v", err)
	}

	message := &models.ServerMessage{
		ClientID: "11111111-1111-1111-1111-111111111111",
		ServerID: server.ID,
		AuthorID: author.ID,
		Content:  "long EURUSD at 1.0850",
	}
	if err := msgRepo.Create(message); err != nil {
		t.Fatalf("Create message error = %v", err)
	}
	return server, owner, author, message
}

func TestDeleteModerated(t *testing.T) {
	tests := []struct {
		name    string
		setup   func(t *testing.T, db *gorm.DB, server *models.Server) moderation.Actor
		wantErr error
	}{
		{
			name: "author deletes own message",
			setup: func(t *testing.T, db *gorm.DB, server *models.Server) moderation.Actor {
				var author models.User
				db.Where("username = ?", "author").First(&author)
				return moderation.Actor{ID: author.ID}
			},
		},
		{
			name: "owner deletes member message",
			setup: func(t *testing.T, db *gorm.DB, server *models.Server) moderation.Actor {
				return moderation.Actor{ID: server.OwnerID}
			},
		},
		{
			name: "moderator deletes member message",
			setup: func(t *testing.T, db *gorm.DB, server *models.Server) moderation.Actor {
				mod := createTestUser(t, db, "mod")
				repo := NewServerRepository(db)
				if err := repo.AddMember(server.ID, mod.ID, models.RoleModerator); err != nil {
					t.Fatalf("AddMember error = %v", err)
				}
				return moderation.Actor{ID: mod.ID}
			},
		},
		{
			name: "plain member denied",
			setup: func(t *testing.T, db *gorm.DB, server *models.Server) moderation.Actor {
				bystander := createTestUser(t, db, "bystander")
				repo := NewServerRepository(db)
				if err := repo.AddMember(server.ID, bystander.ID, models.RoleMember); err != nil {
					t.Fatalf("AddMember error = %v", err)
				}
				return moderation.Actor{ID: bystander.ID}
			},
			wantErr: apperr.ErrForbidden,
		},
		{
			name: "non-member denied",
			setup: func(t *testing.T, db *gorm.DB, server *models.Server) moderation.Actor {
				outsider := createTestUser(t, db, "outsider")
				return moderation.Actor{ID: outsider.ID}
			},
			wantErr: apperr.ErrForbidden,
		},
		{
			name: "platform admin without membership allowed",
			setup: func(t *testing.T, db *gorm.DB, server *models.Server) moderation.Actor {
				admin := createTestUser(t, db, "staff")
				return moderation.Actor{ID: admin.ID, PlatformAdmin: true}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db := setupTestDB(t)
			server, _, _, message := seedServerWithMessage(t, db)
			msgRepo := NewMessageRepository(db)

			actor := tt.setup(t, db, server)
			err := msgRepo.DeleteModerated(message.ID, actor)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("DeleteModerated = %v, want %v", err, tt.wantErr)
				}
				if _, err := msgRepo.FindByID(message.ID); err != nil {
					t.Errorf("message should survive a denied delete: %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("DeleteModerated error = %v", err)
			}
			if _, err := msgRepo.FindByID(message.ID); !errors.Is(err, apperr.ErrNotFound) {
				t.Errorf("FindByID after delete = %v, want ErrNotFound", err)
			}
		})
	}
}

func TestDeleteModeratedMissingMessage(t *testing.T) {
	db := setupTestDB(t)
	msgRepo := NewMessageRepository(db)

	err := msgRepo.DeleteModerated(424242, moderation.Actor{ID: 1})
	if !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("DeleteModerated on missing message = %v, want ErrNotFound", err)
	}
}

func TestDeleteModeratedSeesRevokedRole(t *testing.T) {
	// A demotion applied before the delete attempt must be honored: the
	// role is re-read inside the delete transaction, never cached.
	db := setupTestDB(t)
	server, _, _, message := seedServerWithMessage(t, db)
	serverRepo := NewServerRepository(db)
	msgRepo := NewMessageRepository(db)

	mod := createTestUser(t, db, "exmod")
	if err := serverRepo.AddMember(server.ID, mod.ID, models.RoleModerator); err != nil {
		t.Fatalf("AddMember error = %v", err)
	}
	if err := serverRepo.UpdateMemberRole(server.ID, mod.ID, models.RoleMember); err != nil {
		t.Fatalf("UpdateMemberRole error = %v", err)
	}

	if err := msgRepo.DeleteModerated(message.ID, moderation.Actor{ID: mod.ID}); !errors.Is(err, apperr.ErrForbidden) {
		t.Errorf("DeleteModerated after demotion = %v, want ErrForbidden", err)
	}
}

func TestDeleteModeratedModeratorVsModerator(t *testing.T) {
	db := setupTestDB(t)
	server, _, author, message := seedServerWithMessage(t, db)
	serverRepo := NewServerRepository(db)
	msgRepo := NewMessageRepository(db)

	// Promote the author, then send in a peer moderator.
	if err := serverRepo.UpdateMemberRole(server.ID, author.ID, models.RoleModerator); err != nil {
		t.Fatalf("UpdateMemberRole error = %v", err)
	}
	peer := createTestUser(t, db, "peer")
	if err := serverRepo.AddMember(server.ID, peer.ID, models.RoleModerator); err != nil {
		t.Fatalf("AddMember error = %v", err)
	}

	if err := msgRepo.DeleteModerated(message.ID, moderation.Actor{ID: peer.ID}); !errors.Is(err, apperr.ErrForbidden) {
		t.Errorf("moderator deleting peer's message = %v, want ErrForbidden", err)
	}
}

func TestFindServerMessagesPagination(t *testing.T) {
	db := setupTestDB(t)
	server, _, author, _ := seedServerWithMessage(t, db)
	msgRepo := NewMessageRepository(db)

	for i := 0; i < 5; i++ {
		err := msgRepo.Create(&models.ServerMessage{
			ClientID: fmt.Sprintf("22222222-2222-2222-2222-%012d", i),
			ServerID: server.ID,
			AuthorID: author.ID,
			Content:  fmt.Sprintf("update %d", i),
		})
		if err != nil {
			t.Fatalf("Create error = %v", err)
		}
	}

	page, err := msgRepo.FindServerMessages(server.ID, 0, 3)
	if err != nil {
		t.Fatalf("FindServerMessages error = %v", err)
	}
	if len(page) != 3 {
		t.Fatalf("page size = %d, want 3", len(page))
	}
	// Chronological within the page.
	for i := 1; i < len(page); i++ {
		if page[i].ID <= page[i-1].ID {
			t.Errorf("page not chronological: %d then %d", page[i-1].ID, page[i].ID)
		}
	}

	older, err := msgRepo.FindServerMessages(server.ID, page[0].ID, 10)
	if err != nil {
		t.Fatalf("FindServerMessages cursor error = %v", err)
	}
	for _, m := range older {
		if m.ID >= page[0].ID {
			t.Errorf("cursor page leaked id %d >= cursor %d", m.ID, page[0].ID)
		}
	}
}

func TestLatestMessageID(t *testing.T) {
	db := setupTestDB(t)
	server, _, _, message := seedServerWithMessage(t, db)
	msgRepo := NewMessageRepository(db)

	latest, err := msgRepo.LatestMessageID(server.ID)
	if err != nil {
		t.Fatalf("LatestMessageID error = %v", err)
	}
	if latest != message.ID {
		t.Errorf("LatestMessageID = %d, want %d", latest, message.ID)
	}

	empty, err := msgRepo.LatestMessageID(9999)
	if err != nil || empty != 0 {
		t.Errorf("LatestMessageID for empty server = %d (%v), want 0", empty, err)
	}
}
