package runner

// resolved is the fully-merged configuration in effect for one bench,
// after folding the main-level, group-level, benchmark-level and
// bench-level Config layers together, most-specific wins.
type resolved struct {
	DefaultTool   ValgrindTool
	EnvClear      bool
	Envs          []EnvVar
	Tolerance     *float64
	ShowGrid      bool
	TruncateBytes int
	ShowIntermediate bool
	Tools         []ToolConfig
	ValgrindArgs  []string

	CurrentDir    string
	ExitWith      ExitWith
	Sandbox       *Sandbox
	SetupParallel bool
}

func defaultResolved() resolved {
	return resolved{
		DefaultTool:   ToolCallgrind,
		ShowGrid:      true,
		TruncateBytes: 50,
		ExitWith:      ExitWith{Kind: ExitWithSuccess},
	}
}

// mergeConfig folds layers in order, most specific (later) layer wins for
// scalar fields. Tools accumulate across layers unless a later layer sets
// ToolsOverride, which replaces the accumulated set wholesale.
func mergeConfig(layers ...*Config) resolved {
	r := defaultResolved()
	var tools []ToolConfig

	for _, c := range layers {
		if c == nil {
			continue
		}
		if c.DefaultTool != nil {
			r.DefaultTool = *c.DefaultTool
		}
		if c.EnvClear != nil {
			r.EnvClear = *c.EnvClear
		}
		if len(c.Envs) > 0 {
			r.Envs = append(r.Envs, c.Envs...)
		}
		if c.OutputFormat != nil {
			if c.OutputFormat.ShowGrid != nil {
				r.ShowGrid = *c.OutputFormat.ShowGrid
			}
			if c.OutputFormat.ShowIntermediate != nil {
				r.ShowIntermediate = *c.OutputFormat.ShowIntermediate
			}
			if c.OutputFormat.Tolerance != nil {
				r.Tolerance = c.OutputFormat.Tolerance
			}
			if c.OutputFormat.TruncateDescription != nil && *c.OutputFormat.TruncateDescription != nil {
				r.TruncateBytes = **c.OutputFormat.TruncateDescription
			}
		}
		if len(c.Tools) > 0 {
			tools = append(tools, c.Tools...)
		}
		if len(c.ToolsOverride) > 0 {
			tools = append([]ToolConfig{}, c.ToolsOverride...)
		}
		if len(c.ValgrindArgs) > 0 {
			r.ValgrindArgs = append(r.ValgrindArgs, c.ValgrindArgs...)
		}
		if c.CurrentDir != nil {
			r.CurrentDir = *c.CurrentDir
		}
		if c.ExitWith != nil {
			r.ExitWith = *c.ExitWith
		}
		if c.Sandbox != nil {
			r.Sandbox = c.Sandbox
		}
		if c.SetupParallel != nil {
			r.SetupParallel = *c.SetupParallel
		}
	}

	r.Tools = resolveTools(tools, r.DefaultTool)
	return r
}

// resolveTools returns the effective tool list: an explicit list passes
// through with Enable defaulting to true, an empty list synthesizes a
// single enabled entry for the default tool.
func resolveTools(tools []ToolConfig, defaultTool ValgrindTool) []ToolConfig {
	if len(tools) == 0 {
		return []ToolConfig{{Kind: defaultTool}}
	}
	out := make([]ToolConfig, 0, len(tools))
	for _, t := range tools {
		if t.Enable != nil && !*t.Enable {
			continue
		}
		out = append(out, t)
	}
	return out
}

// buildEnv renders envs into "NAME=VALUE" assignments suitable for
// exec.Cmd.Env, dropping pass-through entries (nil Value) since those are
// already inherited from the parent environment.
func buildEnv(envs []EnvVar) []string {
	var out []string
	for _, e := range envs {
		if e.Value == nil {
			continue
		}
		out = append(out, e.Name+"="+*e.Value)
	}
	return out
}
