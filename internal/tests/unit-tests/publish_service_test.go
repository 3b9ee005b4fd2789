package unit_tests

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"webforge/internal/models"
	"webforge/internal/repositories"
	"webforge/internal/services"
	"webforge/internal/tests/mocks"
)

func newPublishService(projects *mocks.ProjectRepositoryMock, client *mocks.GenerationClientMock) services.PublishService {
	svc := services.NewPublishService(projects, client, "")
	svc.Startup(context.Background())
	return svc
}

func TestPublish_RejectsInvalidSlugs(t *testing.T) {
	svc := newPublishService(&mocks.ProjectRepositoryMock{}, &mocks.GenerationClientMock{})
	sess := sessionWith(t, map[string]string{"/App.js": "const App = () => null;"})

	for _, slug := range []string{"", "My-Site", "has space", "-leading", "trailing-", "dots.not.ok"} {
		_, err := svc.Publish(context.Background(), sess, slug)
		assert.ErrorIs(t, err, services.ErrInvalidSlug, "slug %q", slug)
	}
}

func TestPublish_SlugClaimedByAnotherProject(t *testing.T) {
	projects := &mocks.ProjectRepositoryMock{
		ClaimSlugFunc: func(id uint, slug string) error {
			return repositories.ErrSlugTaken
		},
	}
	svc := newPublishService(projects, &mocks.GenerationClientMock{})

	_, err := svc.Publish(context.Background(), sessionWith(t, nil), "my-site")
	assert.ErrorIs(t, err, repositories.ErrSlugTaken)
}

func TestPublish_DeploysSelfContainedDocument(t *testing.T) {
	var deployedSlug, deployedDoc string
	client := &mocks.GenerationClientMock{
		DeployFunc: func(ctx context.Context, slug, document string) (string, error) {
			deployedSlug = slug
			deployedDoc = document
			return "https://" + slug + ".webforge.app", nil
		},
	}
	var claimed string
	projects := &mocks.ProjectRepositoryMock{
		GetByIDFunc: func(id uint) (*models.Project, error) {
			return &models.Project{ID: id, Name: "Portfolio"}, nil
		},
		ClaimSlugFunc: func(id uint, slug string) error {
			claimed = slug
			return nil
		},
	}
	svc := newPublishService(projects, client)

	sess := sessionWith(t, map[string]string{
		"/App.js":     "const App = () => null;\nexport default App;",
		"/styles.css": "body { margin: 0; }",
	})

	url, err := svc.Publish(context.Background(), sess, "portfolio")
	assert.NoError(t, err)
	assert.Equal(t, "https://portfolio.webforge.app", url)
	assert.Equal(t, "portfolio", claimed)
	assert.Equal(t, "portfolio", deployedSlug)

	// One complete document, no external references.
	assert.True(t, strings.HasPrefix(deployedDoc, "<!DOCTYPE html>"))
	assert.Contains(t, deployedDoc, "<title>Portfolio</title>")
	assert.Contains(t, deployedDoc, "body { margin: 0; }")
	assert.Contains(t, deployedDoc, "const App = () => null;")
	assert.NotContains(t, deployedDoc, "src=")
}

func TestPublish_HistoryCommitted(t *testing.T) {
	client := &mocks.GenerationClientMock{}
	svc := services.NewPublishService(&mocks.ProjectRepositoryMock{}, client, t.TempDir())
	svc.Startup(context.Background())

	sess := sessionWith(t, map[string]string{"/App.js": "const App = () => null;"})

	// Two publishes to the same slug layer two commits on one repo.
	_, err := svc.Publish(context.Background(), sess, "my-site")
	assert.NoError(t, err)
	_, err = svc.Publish(context.Background(), sess, "my-site")
	assert.NoError(t, err)
}
