package domain

import "time"

// ManifestVersion is the schema version written into assembly manifests.
const ManifestVersion = "1"

// SynthInfo records one synthesized template in the assembly manifest.
type SynthInfo struct {
	StackName    string    `json:"stackName"`
	StageName    string    `json:"stageName"`
	TemplateFile string    `json:"templateFile"`
	TemplateHash string    `json:"templateHash"`
	Account      string    `json:"account,omitempty"`
	Region       string    `json:"region,omitempty"`
	Timestamp    time.Time `json:"timestamp"`
}

// Manifest indexes the templates of a cloud assembly by artifact ID.
type Manifest struct {
	Version   string               `json:"version"`
	Artifacts map[string]SynthInfo `json:"artifacts"`
}

// NewManifest creates an empty manifest.
func NewManifest() *Manifest {
	return &Manifest{
		Version:   ManifestVersion,
		Artifacts: make(map[string]SynthInfo),
	}
}
