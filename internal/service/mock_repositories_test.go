package service

import (
	"errors"
	"time"

	"github.com/oginakoko/gaphy-trade-hive-sub001/internal/apperr"
	"github.com/oginakoko/gaphy-trade-hive-sub001/internal/models"
	"github.com/oginakoko/gaphy-trade-hive-sub001/internal/moderation"
)

// MockServerRepository is an in-memory implementation of
// repository.ServerRepositoryInterface for tests.
type MockServerRepository struct {
	servers     map[uint]*models.Server
	memberships map[uint]map[uint]models.ServerRole
	nextID      uint
}

func NewMockServerRepository() *MockServerRepository {
	return &MockServerRepository{
		servers:     make(map[uint]*models.Server),
		memberships: make(map[uint]map[uint]models.ServerRole),
		nextID:      1,
	}
}

func (m *MockServerRepository) CreateWithOwner(server *models.Server) error {
	if server.ID == 0 {
		server.ID = m.nextID
		m.nextID++
	}
	m.servers[server.ID] = server
	m.memberships[server.ID] = map[uint]models.ServerRole{server.OwnerID: models.RoleOwner}
	return nil
}

func (m *MockServerRepository) FindByID(id uint) (*models.Server, error) {
	if s, ok := m.servers[id]; ok {
		return s, nil
	}
	return nil, apperr.ErrNotFound
}

func (m *MockServerRepository) SearchPublic(query string, limit int) ([]models.Server, error) {
	var out []models.Server
	for _, s := range m.servers {
		if s.IsPublic {
			out = append(out, *s)
		}
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out, nil
}

func (m *MockServerRepository) Delete(serverID uint) error {
	if _, ok := m.servers[serverID]; !ok {
		return apperr.ErrNotFound
	}
	delete(m.servers, serverID)
	delete(m.memberships, serverID)
	return nil
}

func (m *MockServerRepository) AddMember(serverID, userID uint, role models.ServerRole) error {
	if _, ok := m.memberships[serverID]; !ok {
		m.memberships[serverID] = make(map[uint]models.ServerRole)
	}
	if _, ok := m.memberships[serverID][userID]; ok {
		return apperr.ErrConflict
	}
	m.memberships[serverID][userID] = role
	return nil
}

func (m *MockServerRepository) RemoveMember(serverID, userID uint) error {
	gm, ok := m.memberships[serverID]
	if !ok {
		return apperr.ErrNotFound
	}
	role, ok := gm[userID]
	if !ok || role == models.RoleOwner {
		return apperr.ErrNotFound
	}
	delete(gm, userID)
	return nil
}

func (m *MockServerRepository) UpdateMemberRole(serverID, userID uint, role models.ServerRole) error {
	gm, ok := m.memberships[serverID]
	if !ok {
		return apperr.ErrNotFound
	}
	current, ok := gm[userID]
	if !ok || current == models.RoleOwner {
		return apperr.ErrNotFound
	}
	gm[userID] = role
	return nil
}

func (m *MockServerRepository) GetMembers(serverID uint) ([]models.ServerMember, error) {
	var members []models.ServerMember
	for uid, role := range m.memberships[serverID] {
		members = append(members, models.ServerMember{ServerID: serverID, UserID: uid, Role: role})
	}
	return members, nil
}

func (m *MockServerRepository) CountMembers(serverID uint) (int64, error) {
	return int64(len(m.memberships[serverID])), nil
}

func (m *MockServerRepository) IsMember(serverID, userID uint) (bool, error) {
	if gm, ok := m.memberships[serverID]; ok {
		_, ok := gm[userID]
		return ok, nil
	}
	return false, nil
}

func (m *MockServerRepository) MemberRole(serverID, userID uint) (models.ServerRole, bool, error) {
	if gm, ok := m.memberships[serverID]; ok {
		if role, ok := gm[userID]; ok {
			return role, true, nil
		}
	}
	return "", false, nil
}

func (m *MockServerRepository) GetUserServers(userID uint) ([]models.Server, error) {
	var out []models.Server
	for sid, gm := range m.memberships {
		if _, ok := gm[userID]; ok {
			if s, ok := m.servers[sid]; ok {
				out = append(out, *s)
			}
		}
	}
	return out, nil
}

// MockMessageRepository is an in-memory implementation of
// repository.MessageRepositoryInterface. DeleteModerated mirrors the real
// repository: every delete re-runs the decision against the live mock
// directory.
type MockMessageRepository struct {
	messages map[uint]*models.ServerMessage
	roles    moderation.RoleLookup
	nextID   uint

	// clientIDLookupErr, when set, is returned from FindByClientID in
	// place of a real lookup.
	clientIDLookupErr error
}

func NewMockMessageRepository(roles moderation.RoleLookup) *MockMessageRepository {
	return &MockMessageRepository{
		messages: make(map[uint]*models.ServerMessage),
		roles:    roles,
		nextID:   1,
	}
}

func (m *MockMessageRepository) Create(message *models.ServerMessage) error {
	// Mirrors the store's unique (client_id, author_id) index.
	for _, existing := range m.messages {
		if existing.ClientID == message.ClientID && existing.AuthorID == message.AuthorID {
			return errors.New("duplicated key not allowed")
		}
	}
	if message.ID == 0 {
		message.ID = m.nextID
		m.nextID++
	}
	m.messages[message.ID] = message
	return nil
}

func (m *MockMessageRepository) FindByID(id uint) (*models.ServerMessage, error) {
	if msg, ok := m.messages[id]; ok {
		return msg, nil
	}
	return nil, apperr.ErrNotFound
}

func (m *MockMessageRepository) FindByClientID(clientID string, authorID uint) (*models.ServerMessage, error) {
	if m.clientIDLookupErr != nil {
		return nil, m.clientIDLookupErr
	}
	for _, msg := range m.messages {
		if msg.ClientID == clientID && msg.AuthorID == authorID {
			return msg, nil
		}
	}
	return nil, apperr.ErrNotFound
}

func (m *MockMessageRepository) FindServerMessages(serverID uint, cursor uint, limit int) ([]models.ServerMessage, error) {
	var result []models.ServerMessage
	for _, msg := range m.messages {
		if msg.ServerID != serverID {
			continue
		}
		if cursor > 0 && msg.ID >= cursor {
			continue
		}
		result = append(result, *msg)
		if len(result) >= limit {
			break
		}
	}
	return result, nil
}

func (m *MockMessageRepository) LatestMessageID(serverID uint) (uint, error) {
	var maxID uint
	for _, msg := range m.messages {
		if msg.ServerID == serverID && msg.ID > maxID {
			maxID = msg.ID
		}
	}
	return maxID, nil
}

func (m *MockMessageRepository) DeleteModerated(messageID uint, actor moderation.Actor) error {
	msg, ok := m.messages[messageID]
	if !ok {
		return apperr.ErrNotFound
	}
	decision, err := moderation.Decide(actor, msg, m.roles)
	if err != nil {
		return err
	}
	if !decision.Allowed() {
		return apperr.ErrForbidden
	}
	delete(m.messages, messageID)
	return nil
}

// MockInviteRepository is an in-memory implementation of
// repository.InviteRepositoryInterface.
type MockInviteRepository struct {
	links  map[string]*models.ServerInviteLink
	nextID uint
}

func NewMockInviteRepository() *MockInviteRepository {
	return &MockInviteRepository{links: make(map[string]*models.ServerInviteLink), nextID: 1}
}

func (m *MockInviteRepository) Create(link *models.ServerInviteLink) error {
	if link.ID == 0 {
		link.ID = m.nextID
		m.nextID++
	}
	m.links[link.Token] = link
	return nil
}

func (m *MockInviteRepository) FindByID(id uint) (*models.ServerInviteLink, error) {
	for _, link := range m.links {
		if link.ID == id {
			return link, nil
		}
	}
	return nil, apperr.ErrNotFound
}

func (m *MockInviteRepository) FindByToken(token string) (*models.ServerInviteLink, error) {
	if link, ok := m.links[token]; ok {
		return link, nil
	}
	return nil, apperr.ErrNotFound
}

func (m *MockInviteRepository) IncrementUse(id uint) error {
	for _, link := range m.links {
		if link.ID == id {
			link.UsedCount++
			return nil
		}
	}
	return errors.New("record not found")
}

func (m *MockInviteRepository) Revoke(id uint, revokedAt time.Time) error {
	for _, link := range m.links {
		if link.ID == id {
			link.RevokedAt = &revokedAt
			return nil
		}
	}
	return errors.New("record not found")
}

// MockReadStateRepository is an in-memory implementation of
// repository.ReadStateRepositoryInterface.
type MockReadStateRepository struct {
	states map[[2]uint]*models.ServerReadState
}

func NewMockReadStateRepository() *MockReadStateRepository {
	return &MockReadStateRepository{states: make(map[[2]uint]*models.ServerReadState)}
}

func (m *MockReadStateRepository) EnsureForMember(serverID, userID uint) error {
	key := [2]uint{serverID, userID}
	if _, ok := m.states[key]; !ok {
		m.states[key] = &models.ServerReadState{ServerID: serverID, UserID: userID}
	}
	return nil
}

func (m *MockReadStateRepository) DeleteForMember(serverID, userID uint) error {
	delete(m.states, [2]uint{serverID, userID})
	return nil
}

func (m *MockReadStateRepository) UpsertMonotonic(serverID, userID uint, lastReadMessageID uint) error {
	key := [2]uint{serverID, userID}
	state, ok := m.states[key]
	if !ok {
		state = &models.ServerReadState{ServerID: serverID, UserID: userID}
		m.states[key] = state
	}
	if lastReadMessageID > state.LastReadMessageID {
		state.LastReadMessageID = lastReadMessageID
	}
	return nil
}

func (m *MockReadStateRepository) Get(serverID, userID uint) (*models.ServerReadState, error) {
	if state, ok := m.states[[2]uint{serverID, userID}]; ok {
		return state, nil
	}
	return nil, errors.New("record not found")
}

func (m *MockReadStateRepository) ListByServer(serverID uint) ([]models.ServerReadState, error) {
	var out []models.ServerReadState
	for key, state := range m.states {
		if key[0] == serverID {
			out = append(out, *state)
		}
	}
	return out, nil
}
