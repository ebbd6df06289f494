package io

// document is the on-disk form shared by all formats.
type document struct {
	Nodes []node `json:"nodes" toml:"nodes" yaml:"nodes"`
}

type node struct {
	ID       string    `json:"id,omitempty" toml:"id,omitempty" yaml:"id,omitempty"`
	Name     string    `json:"name,omitempty" toml:"name,omitempty" yaml:"name,omitempty"`
	Parent   string    `json:"parent,omitempty" toml:"parent,omitempty" yaml:"parent,omitempty"`
	Position *position `json:"position,omitempty" toml:"position,omitempty" yaml:"position,omitempty"`
	Renderer *renderer `json:"renderer,omitempty" toml:"renderer,omitempty" yaml:"renderer,omitempty"`
	Group    *group    `json:"group,omitempty" toml:"group,omitempty" yaml:"group,omitempty"`
}

type position struct {
	X float64 `json:"x,omitempty" toml:"x,omitempty" yaml:"x,omitempty"`
	Y float64 `json:"y,omitempty" toml:"y,omitempty" yaml:"y,omitempty"`
	Z float64 `json:"z,omitempty" toml:"z,omitempty" yaml:"z,omitempty"`
}

type renderer struct {
	Name  string `json:"name,omitempty" toml:"name,omitempty" yaml:"name,omitempty"`
	Layer string `json:"layer,omitempty" toml:"layer,omitempty" yaml:"layer,omitempty"`
}

type group struct {
	Name     string   `json:"name,omitempty" toml:"name,omitempty" yaml:"name,omitempty"`
	Mode     string   `json:"mode,omitempty" toml:"mode,omitempty" yaml:"mode,omitempty"`
	Layer    string   `json:"layer,omitempty" toml:"layer,omitempty" yaml:"layer,omitempty"`
	IsoScale float64  `json:"iso_scale,omitempty" toml:"iso_scale,omitempty" yaml:"iso_scale,omitempty"`
	Disabled bool     `json:"disabled,omitempty" toml:"disabled,omitempty" yaml:"disabled,omitempty"`
	Members  []string `json:"members,omitempty" toml:"members,omitempty" yaml:"members,omitempty"`
}
