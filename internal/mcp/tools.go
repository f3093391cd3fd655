package mcp

import (
	"context"
	"fmt"
	"strings"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	errs "github.com/1broseidon/dashspace/internal/errors"
	"github.com/1broseidon/dashspace/internal/permissions"
	"github.com/1broseidon/dashspace/internal/platform"
	"github.com/1broseidon/dashspace/internal/spaces"
)

func (s *Server) handleListSpaces(_ context.Context, _ *mcpsdk.CallToolRequest, args ListSpacesInput) (*mcpsdk.CallToolResult, ListSpacesOutput, error) {
	maskText := strings.TrimSpace(args.Mask)
	if maskText == "" {
		maskText = "all"
	}
	mask, err := platform.ParseSpaceMask(maskText)
	if err != nil {
		return nil, ListSpacesOutput{}, err
	}

	ids, err := s.svc.Spaces.EnumerateSpaces(mask)
	if err != nil && errs.GetCode(err) != errs.EUnsupported {
		return nil, ListSpacesOutput{}, err
	}

	out := ListSpacesOutput{Mask: mask.String(), Spaces: make([]uint64, 0, len(ids))}
	for _, id := range ids {
		out.Spaces = append(out.Spaces, uint64(id))
	}
	return nil, out, nil
}

func (s *Server) handleListWindows(_ context.Context, _ *mcpsdk.CallToolRequest, _ ListWindowsInput) (*mcpsdk.CallToolResult, ListWindowsOutput, error) {
	windows, err := s.svc.Windows()
	if err != nil {
		return nil, ListWindowsOutput{}, err
	}

	out := ListWindowsOutput{Windows: make([]WindowInfo, 0, len(windows))}
	for _, w := range windows {
		out.Windows = append(out.Windows, WindowInfo{
			ID:      uint32(w.ID),
			PID:     w.PID,
			App:     w.AppID,
			Title:   w.Title,
			Space:   uint64(w.Space),
			Current: w.OnCurrent,
		})
	}
	return nil, out, nil
}

func (s *Server) handleWindowSpace(_ context.Context, _ *mcpsdk.CallToolRequest, args WindowSpaceInput) (*mcpsdk.CallToolResult, WindowSpaceOutput, error) {
	if args.Window == 0 {
		return nil, WindowSpaceOutput{}, fmt.Errorf("window is required")
	}
	space, ok, err := s.svc.Spaces.WindowSpace(platform.WindowID(args.Window))
	if err != nil {
		return nil, WindowSpaceOutput{}, err
	}
	return nil, WindowSpaceOutput{
		Window: args.Window,
		Space:  uint64(space),
		Exists: ok,
	}, nil
}

func (s *Server) handleMoveWindow(ctx context.Context, _ *mcpsdk.CallToolRequest, args MoveWindowInput) (*mcpsdk.CallToolResult, MoveWindowOutput, error) {
	if args.Window == 0 {
		return nil, MoveWindowOutput{}, fmt.Errorf("window is required")
	}
	if args.Space == 0 {
		return nil, MoveWindowOutput{}, fmt.Errorf("space is required")
	}

	res, err := s.svc.Spaces.MoveWindow(ctx, platform.WindowID(args.Window), platform.SpaceID(args.Space))
	if err != nil {
		return nil, MoveWindowOutput{}, err
	}
	out := moveOutput(res)

	// An unconfirmed move is reported, not failed: the caller decides whether
	// to retry.
	if res.Outcome == spaces.OutcomeUnconfirmed {
		return &mcpsdk.CallToolResult{
			Content: []mcpsdk.Content{
				&mcpsdk.TextContent{Text: res.Err().Error()},
			},
		}, out, nil
	}
	return nil, out, nil
}

func (s *Server) handleCheckPermissions(_ context.Context, _ *mcpsdk.CallToolRequest, args CheckPermissionsInput) (*mcpsdk.CallToolResult, CheckPermissionsOutput, error) {
	capability := s.svc.Backend.Elements().Capability()
	out := CheckPermissionsOutput{
		Backend:    s.svc.Backend.Name(),
		Capability: capability.String(),
	}
	if capability != platform.Available {
		return nil, out, nil
	}

	err := s.svc.Permissions.Require(args.Prompt)
	out.Trusted = err == nil
	if !out.Trusted {
		out.SettingsURL = permissions.SettingsURL
	}
	return nil, out, nil
}

func moveOutput(res spaces.MoveResult) MoveWindowOutput {
	return MoveWindowOutput{
		Window:   uint32(res.Window),
		Target:   uint64(res.Target),
		From:     uint64(res.From),
		Final:    uint64(res.Final),
		Outcome:  string(res.Outcome),
		Attempts: res.Attempts,
		Reason:   res.Reason,
	}
}
