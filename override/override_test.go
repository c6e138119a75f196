package override

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeResource struct {
	resourceType string
	applied      map[string]any
	order        []string
}

func (f *fakeResource) CfnResourceType() *string { return &f.resourceType }

func (f *fakeResource) AddPropertyOverride(path *string, value interface{}) {
	if f.applied == nil {
		f.applied = map[string]any{}
	}
	f.applied[*path] = value
	f.order = append(f.order, *path)
}

func TestPath_String(t *testing.T) {
	tests := []struct {
		name     string
		path     Path
		expected string
	}{
		{
			name:     "origin access control",
			path:     Path{Key("DistributionConfig"), Key("Origins"), Index(0), Key("OriginAccessControlId")},
			expected: "DistributionConfig.Origins.0.OriginAccessControlId",
		},
		{
			name:     "dotted key is escaped",
			path:     Path{Key("Tags"), Key("app.kubernetes.io/name")},
			expected: `Tags.app\.kubernetes\.io/name`,
		},
		{
			name:     "single key",
			path:     Path{Key("QueueName")},
			expected: "QueueName",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.path.String())
		})
	}
}

func TestPath_Validate(t *testing.T) {
	tests := []struct {
		name    string
		path    Path
		wantErr error
	}{
		{name: "empty", path: nil, wantErr: ErrEmptyPath},
		{name: "leading index", path: Path{Index(0), Key("Id")}, wantErr: ErrInvalidSegment},
		{name: "empty key", path: Path{Key("DistributionConfig"), Key("")}, wantErr: ErrInvalidSegment},
		{name: "negative index", path: Path{Key("Origins"), Index(-1)}, wantErr: ErrInvalidSegment},
		{name: "valid", path: Path{Key("DistributionConfig"), Key("Origins"), Index(2)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.path.Validate()
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestParsePath(t *testing.T) {
	p := ParsePath("DistributionConfig.Origins.0.S3OriginConfig.OriginAccessIdentity")
	require.Len(t, p, 5)
	assert.Equal(t, Key("DistributionConfig"), p[0])
	assert.Equal(t, Index(0), p[2])
	assert.Equal(t, "DistributionConfig.Origins.0.S3OriginConfig.OriginAccessIdentity", p.String())

	assert.Nil(t, ParsePath(""))
}

func TestApply(t *testing.T) {
	res := &fakeResource{resourceType: "AWS::CloudFront::Distribution"}

	err := Apply(res, KnownProperties,
		Override{Path: ParsePath("DistributionConfig.Origins.0.OriginAccessControlId"), Value: "oac-123"},
		Override{Path: ParsePath("DistributionConfig.Origins.0.S3OriginConfig.OriginAccessIdentity"), Value: ""},
	)
	require.NoError(t, err)

	assert.Equal(t, "oac-123", res.applied["DistributionConfig.Origins.0.OriginAccessControlId"])
	assert.Equal(t, "", res.applied["DistributionConfig.Origins.0.S3OriginConfig.OriginAccessIdentity"])
	assert.Equal(t, []string{
		"DistributionConfig.Origins.0.OriginAccessControlId",
		"DistributionConfig.Origins.0.S3OriginConfig.OriginAccessIdentity",
	}, res.order)
}

func TestApply_UnknownPropertyLeavesResourceUntouched(t *testing.T) {
	res := &fakeResource{resourceType: "AWS::CloudFront::Distribution"}

	err := Apply(res, KnownProperties,
		Override{Path: ParsePath("DistributionConfig.Enabled"), Value: true},
		Override{Path: ParsePath("DistributionConfg.Enabled"), Value: false},
	)

	assert.ErrorIs(t, err, ErrUnknownProperty)
	assert.Empty(t, res.applied)
}

func TestApply_UnlistedTypeOnlyChecksStructure(t *testing.T) {
	res := &fakeResource{resourceType: "AWS::Custom::Thing"}

	require.NoError(t, Apply(res, KnownProperties, Override{Path: Path{Key("Anything")}, Value: 1}))
	assert.ErrorIs(t, Apply(res, KnownProperties, Override{Path: Path{}, Value: 1}), ErrEmptyPath)
}
