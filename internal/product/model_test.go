package product_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/centralelevate/elevate/internal/product"
)

func TestParseDeploymentStatus(t *testing.T) {
	tests := []struct {
		in   string
		want product.DeploymentStatus
	}{
		{"READY", product.StatusReady},
		{"error", product.StatusError},
		{" Building ", product.StatusBuilding},
		{"QUEUED", product.StatusQueued},
		{"CANCELED", product.StatusCanceled},
		{"", product.StatusAbsent},
		{"INITIALIZING", product.StatusAbsent},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, product.ParseDeploymentStatus(tt.in))
		})
	}
}

func TestDeploymentStatus_JSON(t *testing.T) {
	b, err := json.Marshal(product.StatusAbsent)
	require.NoError(t, err)
	assert.Equal(t, "null", string(b))

	b, err = json.Marshal(product.StatusBuilding)
	require.NoError(t, err)
	assert.Equal(t, `"BUILDING"`, string(b))

	var st product.DeploymentStatus
	require.NoError(t, json.Unmarshal([]byte(`"ready"`), &st))
	assert.Equal(t, product.StatusReady, st)

	require.NoError(t, json.Unmarshal([]byte(`null`), &st))
	assert.Equal(t, product.StatusAbsent, st)

	assert.Error(t, json.Unmarshal([]byte(`"EXPLODED"`), &st))
	assert.Error(t, json.Unmarshal([]byte(`42`), &st))
}

func TestDeploymentStatus_NullString(t *testing.T) {
	assert.Nil(t, product.StatusAbsent.NullString())
	require.NotNil(t, product.StatusQueued.NullString())
	assert.Equal(t, "QUEUED", *product.StatusQueued.NullString())
}

func TestUpdateFields_Apply(t *testing.T) {
	p := product.Product{
		ID:        uuid.New(),
		Name:      "Nexus",
		Features:  []string{"a"},
		IsStarred: false,
	}

	starred := true
	name := "Nexus 2"
	features := []string{"a", "b"}
	deployed := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	status := product.StatusReady

	product.UpdateFields{
		Name:                   &name,
		Features:               &features,
		IsStarred:              &starred,
		VercelDeploymentStatus: &status,
		VercelLastDeployment:   &deployed,
	}.Apply(&p)

	assert.Equal(t, "Nexus 2", p.Name)
	assert.Equal(t, []string{"a", "b"}, p.Features)
	assert.True(t, p.IsStarred)
	assert.Equal(t, product.StatusReady, p.VercelDeploymentStatus)
	require.NotNil(t, p.VercelLastDeployment)
	assert.True(t, deployed.Equal(*p.VercelLastDeployment))

	features[0] = "mutated"
	assert.Equal(t, "a", p.Features[0], "apply must copy the features slice")
}

func TestUpdateFields_IsEmpty(t *testing.T) {
	assert.True(t, product.UpdateFields{}.IsEmpty())
	starred := false
	assert.False(t, product.UpdateFields{IsStarred: &starred}.IsEmpty())
}

func TestUpdateFields_DecodeOnlyPresentFields(t *testing.T) {
	var f product.UpdateFields
	require.NoError(t, json.Unmarshal([]byte(`{"isStarred":true,"vercelDeploymentStatus":"ERROR"}`), &f))

	require.NotNil(t, f.IsStarred)
	assert.True(t, *f.IsStarred)
	require.NotNil(t, f.VercelDeploymentStatus)
	assert.Equal(t, product.StatusError, *f.VercelDeploymentStatus)
	assert.Nil(t, f.Name)
	assert.Nil(t, f.Features)
}

func TestDraft_RoundTrip(t *testing.T) {
	p := product.Product{
		ID:              uuid.New(),
		Name:            "Nexus",
		Description:     "desc",
		Features:        []string{"x", "y"},
		GitRepoURL:      "https://github.com/acme/nexus",
		VercelProjectID: "prj_1",
	}

	d := product.DraftOf(p)
	d.Features[0] = "changed"
	assert.Equal(t, "x", p.Features[0], "draft must not alias the product features")

	u := d.ToUpdate()
	var merged product.Product
	u.Apply(&merged)
	assert.Equal(t, "Nexus", merged.Name)
	assert.Equal(t, []string{"changed", "y"}, merged.Features)
	assert.Equal(t, "prj_1", merged.VercelProjectID)
	assert.Nil(t, u.IsStarred, "drafts never touch the star flag")
}

func TestNewFromDraft_DefaultsFeatures(t *testing.T) {
	p := product.NewFromDraft(product.Draft{Name: "Nexus"})
	assert.Equal(t, "Nexus", p.Name)
	assert.NotNil(t, p.Features)
	assert.Empty(t, p.Features)
	assert.True(t, p.VercelDeploymentStatus.IsAbsent())
}

func TestHasDeploymentIntegration(t *testing.T) {
	assert.False(t, (&product.Product{}).HasDeploymentIntegration())
	assert.False(t, (&product.Product{VercelProjectID: "  "}).HasDeploymentIntegration())
	assert.True(t, (&product.Product{VercelProjectID: "prj_1"}).HasDeploymentIntegration())
}
