package service

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/sfdportal/portal/internal/repo"
)

func publishLink(t *testing.T, env testEnv, actor repo.User, title string, audience repo.Audience) repo.Content {
	t.Helper()
	c, err := env.content.Publish(context.Background(), actor, PublishInput{
		Title:       title,
		Date:        "2024-05-01",
		ContentType: repo.ContentLink,
		LinkURL:     "https://intranet.example/" + title,
		Audience:    audience,
	})
	if err != nil {
		t.Fatalf("publish %s: %v", title, err)
	}
	return *c
}

func titles(list []repo.Content) []string {
	out := make([]string, 0, len(list))
	for _, c := range list {
		out = append(out, c.Title)
	}
	return out
}

func TestVisibilityResolution(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	admin := env.login(t, "admin", "admin")
	u1 := env.createUser(t, "u1")
	u2 := env.createUser(t, "u2")

	publishLink(t, env, admin, "A", repo.Everyone())
	publishLink(t, env, admin, "B", repo.SpecificUsers(u1.ID))
	publishLink(t, env, admin, "C", repo.SpecificUsers(u2.ID))

	tests := []struct {
		user string
		want []string
	}{
		{user: u1.ID, want: []string{"B", "A"}},
		{user: u2.ID, want: []string{"C", "A"}},
		{user: "u3", want: []string{"A"}},
	}
	for _, tt := range tests {
		got, err := env.content.VisibleTo(ctx, tt.user)
		if err != nil {
			t.Fatalf("visible to %s: %v", tt.user, err)
		}
		gotTitles := titles(got)
		if len(gotTitles) != len(tt.want) {
			t.Fatalf("user %s: expected %v, got %v", tt.user, tt.want, gotTitles)
		}
		for i := range tt.want {
			if gotTitles[i] != tt.want[i] {
				t.Fatalf("user %s: expected %v, got %v", tt.user, tt.want, gotTitles)
			}
		}
	}
}

func TestPublishValidation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	admin := env.login(t, "admin", "admin")
	viewer := env.createAdmin(t, "leitor", repo.CapViewUsers)

	tests := []struct {
		name  string
		actor repo.User
		in    PublishInput
		want  error
	}{
		{
			name:  "missing capability",
			actor: viewer,
			in:    PublishInput{Title: "x", Date: "d", ContentType: repo.ContentLink, LinkURL: "https://x", Audience: repo.Everyone()},
			want:  ErrPermissionDenied,
		},
		{
			name:  "missing title",
			actor: admin,
			in:    PublishInput{Date: "d", ContentType: repo.ContentLink, LinkURL: "https://x", Audience: repo.Everyone()},
			want:  ErrMissingRequiredField,
		},
		{
			name:  "file without data",
			actor: admin,
			in:    PublishInput{Title: "x", Date: "d", ContentType: repo.ContentFile, Audience: repo.Everyone()},
			want:  ErrMissingRequiredField,
		},
		{
			name:  "link without url",
			actor: admin,
			in:    PublishInput{Title: "x", Date: "d", ContentType: repo.ContentLink, Audience: repo.Everyone()},
			want:  ErrMissingRequiredField,
		},
		{
			name:  "empty audience",
			actor: admin,
			in:    PublishInput{Title: "x", Date: "d", ContentType: repo.ContentLink, LinkURL: "https://x", Audience: repo.SpecificUsers()},
			want:  ErrEmptyTargetSelection,
		},
		{
			name:  "unknown type",
			actor: admin,
			in:    PublishInput{Title: "x", Date: "d", ContentType: "video", Audience: repo.Everyone()},
			want:  ErrInvalidContentType,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := env.content.Publish(ctx, tt.actor, tt.in); !errors.Is(err, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, err)
			}
		})
	}

	list, _ := env.store.ListContent(ctx)
	if len(list) != 0 {
		t.Fatalf("rejected publications must not be stored, got %d", len(list))
	}
}

func TestPublishWithOnlyCreateContent(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	rh := env.createAdmin(t, "rh", repo.CapCreateContent)
	user := env.createUser(t, "12345")

	c, err := env.content.Publish(ctx, rh, PublishInput{
		Title:       "Comunicado",
		Date:        "2024-06-01",
		ContentType: repo.ContentLink,
		LinkURL:     "https://rh.example/comunicado",
		Audience:    repo.SpecificUsers(user.ID),
	})
	if err != nil {
		t.Fatalf("publish: %v", err)
	}
	visible, err := env.content.VisibleTo(ctx, user.ID)
	if err != nil || len(visible) != 1 || visible[0].ID != c.ID {
		t.Fatalf("expected published item to be visible, got %v (%v)", visible, err)
	}

	if err := env.content.Delete(ctx, rh, c.ID); !errors.Is(err, ErrPermissionDenied) {
		t.Fatalf("createContent alone must not delete, got %v", err)
	}
}

func TestPublishFileAndDownload(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	admin := env.login(t, "admin", "admin")
	user := env.createUser(t, "12345")
	other := env.createUser(t, "67890")
	body := []byte("%PDF-1.4 holerite")

	c, err := env.content.Publish(ctx, admin, PublishInput{
		Title:       "Holerite",
		Date:        "2024-05-01",
		ContentType: repo.ContentFile,
		Audience:    repo.SpecificUsers(user.ID),
		File:        &FileUpload{Name: "Holerite Março.PDF", MimeType: "application/pdf", Data: body},
	})
	if err != nil {
		t.Fatalf("publish: %v", err)
	}
	if c.FileType != repo.FilePDF || c.FileData[:28] != "data:application/pdf;base64," {
		t.Fatalf("unexpected stored file: %s %.40s", c.FileType, c.FileData)
	}

	dl, err := env.content.Download(ctx, user, c.ID)
	if err != nil {
		t.Fatalf("download: %v", err)
	}
	if !bytes.Equal(dl.Body, body) || dl.MimeType != "application/pdf" || dl.FileName != "holerite-marco.pdf" {
		t.Fatalf("unexpected download: %s %s %q", dl.FileName, dl.MimeType, dl.Body)
	}

	if _, err := env.content.Download(ctx, other, c.ID); !errors.Is(err, ErrContentNotFound) {
		t.Fatalf("expected ErrContentNotFound for foreign user, got %v", err)
	}
	if _, err := env.content.Download(ctx, admin, c.ID); err != nil {
		t.Fatalf("admins reach every item: %v", err)
	}
}

func TestPublishLinkDownloadRedirects(t *testing.T) {
	env := newTestEnv(t)
	admin := env.login(t, "admin", "admin")
	c := publishLink(t, env, admin, "manual", repo.Everyone())
	if c.FileName != repo.LinkFileName || c.FileType != repo.FileOther {
		t.Fatalf("unexpected link metadata: %+v", c)
	}
	dl, err := env.content.Download(context.Background(), repo.User{ID: "qualquer", Role: repo.RoleUser}, c.ID)
	if err != nil || dl.RedirectURL != "https://intranet.example/manual" {
		t.Fatalf("unexpected redirect %+v (%v)", dl, err)
	}
}

func TestClassifyFileType(t *testing.T) {
	tests := []struct {
		mime string
		want repo.FileType
	}{
		{mime: "application/pdf", want: repo.FilePDF},
		{mime: "image/jpeg", want: repo.FileJPG},
		{mime: "IMAGE/PNG", want: repo.FilePNG},
		{mime: "application/msword", want: repo.FileDOC},
		{mime: "application/vnd.openxmlformats-officedocument.wordprocessingml.document", want: repo.FileDOC},
		{mime: "application/vnd.ms-powerpoint", want: repo.FilePPT},
		{mime: "application/vnd.openxmlformats-officedocument.presentationml.presentation", want: repo.FilePPT},
		{mime: "text/plain; charset=utf-8", want: repo.FileOther},
		{mime: "", want: repo.FileOther},
	}
	for _, tt := range tests {
		if got := ClassifyFileType(tt.mime); got != tt.want {
			t.Fatalf("%q: expected %s, got %s", tt.mime, tt.want, got)
		}
	}
}

func TestDecodeDataURLRejectsGarbage(t *testing.T) {
	for _, raw := range []string{"", "https://x", "data:text/plain,abc", "data:text/plain;base64,@@@"} {
		if _, _, err := DecodeDataURL(raw); !errors.Is(err, ErrInvalidFileData) {
			t.Fatalf("%q: expected ErrInvalidFileData, got %v", raw, err)
		}
	}
}

func TestUpdateRequiresEditData(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	admin := env.login(t, "admin", "admin")
	deleter := env.createAdmin(t, "limpeza", repo.CapDeleteData)
	c := publishLink(t, env, admin, "Aviso", repo.Everyone())

	title := "Aviso atualizado"
	if _, err := env.content.Update(ctx, deleter, c.ID, UpdateContentInput{Title: &title}); !errors.Is(err, ErrPermissionDenied) {
		t.Fatalf("deleteData must not imply editData, got %v", err)
	}

	audience := repo.SpecificUsers("u9")
	updated, err := env.content.Update(ctx, admin, c.ID, UpdateContentInput{Title: &title, Audience: &audience})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Title != title || updated.Audience.IsEveryone() || !updated.Audience.Includes("u9") {
		t.Fatalf("unexpected update: %+v", updated)
	}

	empty := repo.SpecificUsers()
	if _, err := env.content.Update(ctx, admin, c.ID, UpdateContentInput{Audience: &empty}); !errors.Is(err, ErrEmptyTargetSelection) {
		t.Fatalf("expected ErrEmptyTargetSelection, got %v", err)
	}
	blank := " "
	if _, err := env.content.Update(ctx, admin, c.ID, UpdateContentInput{Date: &blank}); !errors.Is(err, ErrMissingRequiredField) {
		t.Fatalf("expected ErrMissingRequiredField, got %v", err)
	}
	if _, err := env.content.Update(ctx, admin, "nope", UpdateContentInput{Title: &title}); !errors.Is(err, ErrContentNotFound) {
		t.Fatalf("expected ErrContentNotFound, got %v", err)
	}
}

func TestListContentIsAdminOnly(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	admin := env.login(t, "admin", "admin")
	publishLink(t, env, admin, "A", repo.Everyone())

	if _, err := env.content.List(ctx, repo.User{Role: repo.RoleUser}); !errors.Is(err, ErrPermissionDenied) {
		t.Fatalf("expected ErrPermissionDenied, got %v", err)
	}
	plain := env.createAdmin(t, "sem-permissoes")
	list, err := env.content.List(ctx, plain)
	if err != nil || len(list) != 1 {
		t.Fatalf("unexpected list %d (%v)", len(list), err)
	}
}

func TestEndToEndScenario(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	admin := env.login(t, "admin", "admin")

	created, _, err := env.accounts.CreateUserForEmployee(ctx, admin, EmployeeInput{Identifier: "12345", IDType: repo.IDTypeMatricula})
	if err != nil {
		t.Fatalf("create 12345: %v", err)
	}
	other := env.createUser(t, "67890")

	res, err := env.accounts.Authenticate(ctx, "12345", "secret1")
	if err != nil {
		t.Fatalf("first access: %v", err)
	}
	if res.User.Password != "secret1" {
		t.Fatalf("first access must set password")
	}

	c := publishLink(t, env, admin, "Holerite", repo.AudienceFromTargets([]string{created.ID}))

	mine, _ := env.content.VisibleTo(ctx, created.ID)
	if len(mine) != 1 || mine[0].ID != c.ID {
		t.Fatalf("expected exactly Holerite, got %v", titles(mine))
	}
	theirs, _ := env.content.VisibleTo(ctx, other.ID)
	if len(theirs) != 0 {
		t.Fatalf("67890 must see nothing, got %v", titles(theirs))
	}

	if err := env.content.Delete(ctx, admin, c.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	mine, _ = env.content.VisibleTo(ctx, created.ID)
	if len(mine) != 0 {
		t.Fatalf("expected nothing after delete, got %v", titles(mine))
	}
	if err := env.content.Delete(ctx, admin, c.ID); !errors.Is(err, ErrContentNotFound) {
		t.Fatalf("expected ErrContentNotFound, got %v", err)
	}
}
