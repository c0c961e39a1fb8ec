package usecase

import (
	"context"
	"errors"
	"testing"

	"golang.org/x/crypto/bcrypt"

	"chaski/internal/admin/application/ports/in"
	"chaski/internal/admin/application/ports/out"
	"chaski/internal/admin/domain"
	"chaski/internal/model"
	"chaski/internal/shared/auth"
	"chaski/internal/shared/config"
	"chaski/internal/shared/logger"
	"chaski/internal/shared/user"
)

type fakeUserAdminRepo struct {
	users  map[string]*user.User
	hashes map[string]string // email -> bcrypt hash
	active map[string][]domain.ActivePackageRef
}

func newFakeUserAdminRepo() *fakeUserAdminRepo {
	return &fakeUserAdminRepo{
		users:  make(map[string]*user.User),
		hashes: make(map[string]string),
		active: make(map[string][]domain.ActivePackageRef),
	}
}

func (r *fakeUserAdminRepo) Create(_ context.Context, u *user.User, passwordHash string) error {
	if _, ok := r.hashes[u.Email]; ok {
		return domain.ErrEmailTaken
	}
	cp := *u
	r.users[u.ID] = &cp
	r.hashes[u.Email] = passwordHash
	return nil
}

func (r *fakeUserAdminRepo) FindByEmail(_ context.Context, email string) (*user.User, string, error) {
	for _, u := range r.users {
		if u.Email == email {
			cp := *u
			return &cp, r.hashes[email], nil
		}
	}
	return nil, "", user.ErrUserNotFound
}

func (r *fakeUserAdminRepo) FindByID(_ context.Context, id string) (*user.User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, user.ErrUserNotFound
	}
	cp := *u
	return &cp, nil
}

func (r *fakeUserAdminRepo) List(_ context.Context, limit, offset int) ([]*user.User, error) {
	var res []*user.User
	for _, u := range r.users {
		res = append(res, u)
	}
	return res, nil
}

func (r *fakeUserAdminRepo) UpdateRole(_ context.Context, id, role string) error {
	u, ok := r.users[id]
	if !ok {
		return user.ErrUserNotFound
	}
	u.Role = role
	return nil
}

func (r *fakeUserAdminRepo) SetActive(_ context.Context, id string, active bool) error {
	u, ok := r.users[id]
	if !ok {
		return user.ErrUserNotFound
	}
	u.IsActive = active
	return nil
}

func (r *fakeUserAdminRepo) ToggleVerification(_ context.Context, id, field string) (bool, error) {
	u, ok := r.users[id]
	if !ok {
		return false, user.ErrUserNotFound
	}
	switch field {
	case out.FieldVerified:
		u.IsVerified = !u.IsVerified
		return u.IsVerified, nil
	case out.FieldPhoneVerified:
		u.PhoneVerified = !u.PhoneVerified
		return u.PhoneVerified, nil
	case out.FieldIDVerified:
		u.IDVerified = !u.IDVerified
		return u.IDVerified, nil
	}
	return false, errors.New("unknown field")
}

func (r *fakeUserAdminRepo) ActivePackages(_ context.Context, userID string) ([]domain.ActivePackageRef, error) {
	return r.active[userID], nil
}

func seedUser(r *fakeUserAdminRepo, id, role string, active bool) *user.User {
	u := &user.User{
		ID:       id,
		Email:    id + "@chaski.test",
		FullName: "User " + id,
		Role:     role,
		IsActive: active,
	}
	r.users[id] = u
	return u
}

func testJWT() *auth.JWTService {
	return auth.NewJWTService(config.JWTConfig{Secret: "test-secret", ExpiryMinutes: 60})
}

func TestCreateUserAndLogin(t *testing.T) {
	repo := newFakeUserAdminRepo()
	log := logger.NewLogger("test")
	create := NewCreateUserService(repo, log)
	login := NewLoginService(repo, testJWT(), log)

	ctx := context.Background()
	u, err := create.Execute(ctx, in.CreateUserInput{
		Email:    "Ana@Chaski.PE",
		FullName: "Ana Quispe",
		Password: "correct-horse",
		Role:     model.RoleSender,
	})
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	if u.Email != "ana@chaski.pe" {
		t.Errorf("email must be normalized, got %q", u.Email)
	}
	if !u.IsActive {
		t.Error("new user must be active")
	}

	// hash, а не сам пароль
	hash := repo.hashes[u.Email]
	if hash == "correct-horse" {
		t.Fatal("password stored in plain text")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte("correct-horse")); err != nil {
		t.Fatalf("stored hash does not match password: %v", err)
	}

	session, err := login.Execute(ctx, in.LoginInput{Email: "ana@chaski.pe", Password: "correct-horse"})
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if session.Token == "" || session.User.ID != u.ID {
		t.Error("login must return token and user")
	}

	if _, err := login.Execute(ctx, in.LoginInput{Email: "ana@chaski.pe", Password: "wrong"}); err != domain.ErrInvalidCredentials {
		t.Errorf("wrong password: expected ErrInvalidCredentials, got %v", err)
	}
	if _, err := login.Execute(ctx, in.LoginInput{Email: "nobody@chaski.pe", Password: "x"}); err != domain.ErrInvalidCredentials {
		t.Errorf("unknown email: expected ErrInvalidCredentials, got %v", err)
	}
}

func TestCreateUserValidation(t *testing.T) {
	repo := newFakeUserAdminRepo()
	create := NewCreateUserService(repo, logger.NewLogger("test"))
	ctx := context.Background()

	cases := []in.CreateUserInput{
		{Email: "no-at-sign", FullName: "X", Password: "long-enough", Role: model.RoleSender},
		{Email: "a@b.c", FullName: "", Password: "long-enough", Role: model.RoleSender},
		{Email: "a@b.c", FullName: "X", Password: "short", Role: model.RoleSender},
		{Email: "a@b.c", FullName: "X", Password: "long-enough", Role: "superuser"},
	}
	for i, input := range cases {
		if _, err := create.Execute(ctx, input); !errors.Is(err, domain.ErrInvalidUser) {
			t.Errorf("case %d: expected ErrInvalidUser, got %v", i, err)
		}
	}

	if _, err := create.Execute(ctx, in.CreateUserInput{
		Email: "dup@b.c", FullName: "X", Password: "long-enough", Role: model.RoleSender,
	}); err != nil {
		t.Fatalf("first create: %v", err)
	}
	if _, err := create.Execute(ctx, in.CreateUserInput{
		Email: "dup@b.c", FullName: "Y", Password: "long-enough", Role: model.RoleCourier,
	}); err != domain.ErrEmailTaken {
		t.Errorf("duplicate email: expected ErrEmailTaken, got %v", err)
	}
}

func TestLoginInactiveUser(t *testing.T) {
	repo := newFakeUserAdminRepo()
	u := seedUser(repo, "u1", model.RoleSender, false)
	hash, _ := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	repo.hashes[u.Email] = string(hash)

	login := NewLoginService(repo, testJWT(), logger.NewLogger("test"))
	if _, err := login.Execute(context.Background(), in.LoginInput{
		Email:    u.Email,
		Password: "password123",
	}); err != domain.ErrInvalidCredentials {
		t.Fatalf("inactive user login: expected ErrInvalidCredentials, got %v", err)
	}
}

func TestUpdateRole(t *testing.T) {
	repo := newFakeUserAdminRepo()
	seedUser(repo, "admin-1", model.RoleAdmin, true)
	seedUser(repo, "u1", model.RoleSender, true)

	svc := NewUpdateRoleService(repo, logger.NewLogger("test"))
	ctx := context.Background()

	// sender -> both разрешен
	u, err := svc.Execute(ctx, in.UpdateRoleInput{ActorID: "admin-1", UserID: "u1", NewRole: model.RoleBoth})
	if err != nil {
		t.Fatalf("sender->both: %v", err)
	}
	if u.Role != model.RoleBoth {
		t.Errorf("role = %q, want both", u.Role)
	}

	// both -> admin разрешен
	if _, err := svc.Execute(ctx, in.UpdateRoleInput{ActorID: "admin-1", UserID: "u1", NewRole: model.RoleAdmin}); err != nil {
		t.Fatalf("both->admin: %v", err)
	}

	// admin -> sender запрещен (только через both)
	if _, err := svc.Execute(ctx, in.UpdateRoleInput{ActorID: "admin-1", UserID: "u1", NewRole: model.RoleSender}); !errors.Is(err, domain.ErrInvalidRoleChange) {
		t.Errorf("admin->sender: expected ErrInvalidRoleChange, got %v", err)
	}

	// установка той же роли — no-op успех
	if _, err := svc.Execute(ctx, in.UpdateRoleInput{ActorID: "admin-1", UserID: "u1", NewRole: model.RoleAdmin}); err != nil {
		t.Errorf("same-role update must succeed, got %v", err)
	}

	// смена собственной роли запрещена
	if _, err := svc.Execute(ctx, in.UpdateRoleInput{ActorID: "admin-1", UserID: "admin-1", NewRole: model.RoleBoth}); err != domain.ErrSelfModification {
		t.Errorf("self role change: expected ErrSelfModification, got %v", err)
	}
}

func TestToggleActive(t *testing.T) {
	repo := newFakeUserAdminRepo()
	seedUser(repo, "admin-1", model.RoleAdmin, true)
	seedUser(repo, "u1", model.RoleCourier, true)

	svc := NewToggleActiveService(repo, logger.NewLogger("test"))
	ctx := context.Background()

	// самодеактивация запрещена
	if _, err := svc.Execute(ctx, in.ToggleActiveInput{ActorID: "admin-1", UserID: "admin-1"}); err != domain.ErrSelfModification {
		t.Fatalf("self toggle: expected ErrSelfModification, got %v", err)
	}

	// активные посылки блокируют деактивацию
	repo.active["u1"] = []domain.ActivePackageRef{
		{ID: "p1", TrackingID: "CHSK-1", Status: model.PackageStatusInTransit},
	}
	_, err := svc.Execute(ctx, in.ToggleActiveInput{ActorID: "admin-1", UserID: "u1"})
	var blocked *domain.ActivePackagesError
	if !errors.As(err, &blocked) {
		t.Fatalf("expected ActivePackagesError, got %v", err)
	}
	if len(blocked.Packages) != 1 || blocked.Packages[0].TrackingID != "CHSK-1" {
		t.Errorf("blocking detail mismatch: %+v", blocked.Packages)
	}

	// без активных посылок деактивация проходит
	repo.active["u1"] = nil
	u, err := svc.Execute(ctx, in.ToggleActiveInput{ActorID: "admin-1", UserID: "u1"})
	if err != nil {
		t.Fatalf("deactivate: %v", err)
	}
	if u.IsActive {
		t.Error("user must be inactive after toggle")
	}

	// обратное включение не проверяет посылки
	repo.active["u1"] = []domain.ActivePackageRef{{ID: "p2", TrackingID: "CHSK-2", Status: model.PackageStatusInTransit}}
	u, err = svc.Execute(ctx, in.ToggleActiveInput{ActorID: "admin-1", UserID: "u1"})
	if err != nil {
		t.Fatalf("reactivate: %v", err)
	}
	if !u.IsActive {
		t.Error("user must be active after second toggle")
	}
}

func TestToggleVerification(t *testing.T) {
	repo := newFakeUserAdminRepo()
	seedUser(repo, "u1", model.RoleCourier, true)

	svc := NewToggleVerificationService(repo, logger.NewLogger("test"))
	ctx := context.Background()

	u, err := svc.Execute(ctx, in.ToggleVerificationInput{UserID: "u1", Field: out.FieldIDVerified})
	if err != nil {
		t.Fatalf("toggle id_verified: %v", err)
	}
	if !u.IDVerified {
		t.Error("id_verified must flip to true")
	}

	if _, err := svc.Execute(ctx, in.ToggleVerificationInput{UserID: "u1", Field: "password_hash"}); !errors.Is(err, domain.ErrInvalidUser) {
		t.Errorf("unknown field: expected ErrInvalidUser, got %v", err)
	}

	if _, err := svc.Execute(ctx, in.ToggleVerificationInput{UserID: "ghost", Field: out.FieldVerified}); err != user.ErrUserNotFound {
		t.Errorf("missing user: expected ErrUserNotFound, got %v", err)
	}
}
