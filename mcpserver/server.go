// Package mcpserver exposes the parameter store to MCP clients over stdio.
// Nothing here may write to stdout: it carries the protocol.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/pkg/errors"

	"jp8080ctl/debug"
	"jp8080ctl/engine"
	"jp8080ctl/params"
	"jp8080ctl/processor"
	"jp8080ctl/state"
)

// Server binds MCP tools to a store and its processor
type Server struct {
	store *state.Store
	proc  *processor.Processor
	mcp   *server.MCPServer
}

// New builds the MCP server and registers every tool
func New(store *state.Store, proc *processor.Processor, version string) *Server {
	s := &Server{
		store: store,
		proc:  proc,
		mcp: server.NewMCPServer(
			"JP-8080 MCP",
			version,
			server.WithToolCapabilities(false),
		),
	}

	sections := make([]string, 0, params.NumSections)
	for sec := params.Section(0); sec < params.NumSections; sec++ {
		sections = append(sections, sec.String())
	}
	banks := make([]string, 0, params.NumBanks)
	for b := params.Bank(0); b < params.NumBanks; b++ {
		banks = append(banks, b.Key())
	}

	s.mcp.AddTool(mcp.NewTool("jp8080_list-parameters",
		mcp.WithDescription("Lists the JP-8080 parameters with their MIDI encoding and current values."),
		mcp.WithString("section", mcp.Description("Only list one panel section."), mcp.Enum(sections...)),
	), s.listParameters)

	s.mcp.AddTool(mcp.NewTool("jp8080_get-parameter",
		mcp.WithDescription("Returns the current value of one parameter."),
		mcp.WithString("key", mcp.Required(), mcp.Description("Parameter key, e.g. filter_cutoff.")),
	), s.getParameter)

	s.mcp.AddTool(mcp.NewTool("jp8080_set-parameter",
		mcp.WithDescription("Sets a parameter. Continuous parameters take a value from 0 to 1. Waveform parameters take an option index or an option name."),
		mcp.WithString("key", mcp.Required(), mcp.Description("Parameter key, e.g. filter_cutoff.")),
		mcp.WithNumber("value", mcp.Description("Normalized value 0-1, or option index for waveforms.")),
		mcp.WithString("option", mcp.Description("Option name for waveform parameters, e.g. SUPER SAW.")),
	), s.setParameter)

	s.mcp.AddTool(mcp.NewTool("jp8080_select-patch",
		mcp.WithDescription("Selects a patch by bank and program. The synth receives Bank Select and Program Change."),
		mcp.WithString("bank", mcp.Required(), mcp.Description("Bank key."), mcp.Enum(banks...)),
		mcp.WithNumber("program", mcp.Required(), mcp.Description("Program slot within the bank (1-64).")),
	), s.selectPatch)

	s.mcp.AddTool(mcp.NewTool("jp8080_set-channel",
		mcp.WithDescription("Sets the MIDI channel the synth listens on. Everything is resent on the new channel."),
		mcp.WithNumber("channel", mcp.Required(), mcp.Description("MIDI channel (1-16).")),
	), s.setChannel)

	s.mcp.AddTool(mcp.NewTool("jp8080_send-all",
		mcp.WithDescription("Transmits every parameter and the selected patch again."),
	), s.sendAll)

	s.mcp.AddTool(mcp.NewTool("jp8080_save-patch",
		mcp.WithDescription("Saves the current parameter values to a patch file."),
		mcp.WithString("name", mcp.Description("Patch name. A name is generated when omitted.")),
	), s.savePatch)

	s.mcp.AddTool(mcp.NewTool("jp8080_load-patch",
		mcp.WithDescription("Loads a saved patch file and sends it to the synth."),
		mcp.WithString("filename", mcp.Description("Patch filename from jp8080_list-patches. The newest is loaded when omitted.")),
	), s.loadPatch)

	s.mcp.AddTool(mcp.NewTool("jp8080_list-patches",
		mcp.WithDescription("Lists saved patch files, newest first."),
	), s.listPatches)

	return s
}

// Serve runs the server on stdin/stdout until the client disconnects
func (s *Server) Serve() error {
	debug.Log("mcp", "serving on stdio")
	return server.ServeStdio(s.mcp)
}

type paramInfo struct {
	Key      string   `json:"key"`
	Name     string   `json:"name"`
	Section  string   `json:"section"`
	Encoding string   `json:"encoding"`
	CC       *int     `json:"cc,omitempty"`
	Address  string   `json:"address,omitempty"`
	Options  []string `json:"options,omitempty"`
	Value    float64  `json:"value"`
	Wire     int      `json:"wire"`
	Option   string   `json:"option,omitempty"`
}

func (s *Server) describe(id params.ID) paramInfo {
	p := params.Get(id)
	v := s.store.Get(id)
	info := paramInfo{
		Key:     p.Key,
		Name:    p.Name,
		Section: p.Section.String(),
		Value:   v,
		Wire:    engine.WireValue(p, v),
	}
	if p.IsChoice() {
		info.Encoding = "sysex"
		addr := s.proc.Part().Address(p.Encoding.Address)
		info.Address = fmt.Sprintf("% X", addr[:])
		info.Options = p.Options
		info.Option = p.Options[info.Wire]
	} else {
		cc := int(p.Encoding.CC)
		info.Encoding = "cc"
		info.CC = &cc
	}
	return info
}

func (s *Server) listParameters(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	debug.Log("mcp", "list parameters")

	section := request.GetString("section", "")
	var out []paramInfo
	for _, p := range params.All() {
		if section != "" && !strings.EqualFold(p.Section.String(), section) {
			continue
		}
		out = append(out, s.describe(p.ID))
	}
	return jsonResult(out)
}

func (s *Server) getParameter(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	key, err := request.RequireString("key")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	id, ok := params.ByKey(key)
	if !ok {
		return mcp.NewToolResultError("unknown parameter " + key), nil
	}
	return jsonResult(s.describe(id))
}

func (s *Server) setParameter(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	key, err := request.RequireString("key")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	id, ok := params.ByKey(key)
	if !ok {
		return mcp.NewToolResultError("unknown parameter " + key), nil
	}
	p := params.Get(id)

	var value float64
	if option := request.GetString("option", ""); option != "" {
		idx, err := optionIndex(p, option)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		value = float64(idx)
	} else {
		value, err = request.RequireFloat("value")
		if err != nil {
			return mcp.NewToolResultError("value or option is required"), nil
		}
	}

	if _, err := s.store.Set(id, value); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	debug.Log("mcp", "set %s = %v", key, value)
	return jsonResult(s.describe(id))
}

func optionIndex(p *params.Param, option string) (int, error) {
	if !p.IsChoice() {
		return 0, errors.Errorf("%s has no options", p.Key)
	}
	for i, o := range p.Options {
		if strings.EqualFold(o, strings.TrimSpace(option)) {
			return i, nil
		}
	}
	return 0, errors.Errorf("%s has no option %q (options: %s)", p.Key, option, strings.Join(p.Options, ", "))
}

func (s *Server) selectPatch(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	bankKey, err := request.RequireString("bank")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	program, err := request.RequireInt("program")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	bank, err := params.ParseBank(bankKey)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	s.store.SetPatch(bank, program)
	bank, program = s.store.Patch()
	debug.Log("mcp", "select patch %s %d", bank.Key(), program)
	return mcp.NewToolResultText("Selected " + bank.String() + " program " + params.ProgramLabel(program) + "."), nil
}

func (s *Server) setChannel(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	ch, err := request.RequireInt("channel")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	ch = s.store.SetChannel(ch)
	return jsonResult(map[string]int{"channel": ch})
}

func (s *Server) sendAll(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	s.proc.SendAll()
	return mcp.NewToolResultText("All parameters will be sent on the next cycle."), nil
}

func (s *Server) savePatch(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	filename, err := state.SavePatch(s.store, request.GetString("name", ""))
	if err != nil {
		return nil, errors.Wrap(err, "save patch")
	}
	return mcp.NewToolResultText("Saved " + filename + "."), nil
}

func (s *Server) loadPatch(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	filename, err := state.LoadPatch(s.store, request.GetString("filename", ""))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText("Loaded " + filename + "."), nil
}

func (s *Server) listPatches(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	patches, err := state.ListPatches()
	if err != nil {
		return nil, errors.Wrap(err, "list patches")
	}
	type entry struct {
		Filename string `json:"filename"`
		Name     string `json:"name,omitempty"`
		Saved    string `json:"saved"`
	}
	out := make([]entry, 0, len(patches))
	for _, p := range patches {
		out = append(out, entry{Filename: p.Filename, Name: p.Name, Saved: p.Timestamp.Format("2006-01-02 15:04:05")})
	}
	return jsonResult(out)
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, errors.Wrap(err, "marshal result")
	}
	return mcp.NewToolResultText(string(data)), nil
}
