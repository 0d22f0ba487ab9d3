package linear_test

import (
	"bytes"
	"testing"

	"github.com/muesli/termenv"
	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/require"
	"go.trai.ch/cicd/internal/adapters/linear"
	"go.trai.ch/cicd/internal/core/domain"
	"go.trai.ch/cicd/internal/engine/topology"
)

func params(stage, branch string, env domain.Env) domain.Params {
	return domain.Params{
		StageName:          stage,
		CodeStarConnection: "arn:aws:codestar-connections:us-east-1:123456789012:connection/abc-123",
		Env:                env,
		Repo:               domain.Repo{Owner: "acme", Name: "mobile-app", Branch: branch},
	}
}

func TestDescriber_Golden(t *testing.T) {
	tests := []struct {
		name       string
		params     domain.Params
		opts       domain.PipelineOptions
		goldenName string
	}{
		{
			name:       "default topology",
			params:     params("dev", "develop", domain.Env{Account: "123456789012", Region: "us-east-1"}),
			opts:       domain.DefaultPipelineOptions(),
			goldenName: "describe_default",
		},
		{
			name:   "parallel builds",
			params: params("prod", "main", domain.Env{}),
			opts: domain.PipelineOptions{
				StackName:      "MobileStack",
				ParallelBuilds: true,
			},
			goldenName: "describe_parallel",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := topology.NewBuilder().Build(tt.params, tt.opts)
			require.NoError(t, err)

			var buf bytes.Buffer
			d := linear.NewDescriber(&buf, termenv.Ascii)
			require.NoError(t, d.Describe(&buf, p, tt.params))

			g := goldie.New(t)
			g.Assert(t, tt.goldenName, buf.Bytes())
		})
	}
}
