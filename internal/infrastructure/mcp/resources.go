package mcp

import (
	"context"
	"encoding/json"

	mcplib "github.com/felixgeelhaar/mcp-go"

	"github.com/felixgeelhaar/goalgenie/pkg/domain/planning"
)

const formatResourceURI = "goalgenie://plan-format"

type formatResponse struct {
	FormatVersion    string `json:"format_version"`
	DayHeader        string `json:"day_header"`
	SectionHeader    string `json:"section_header"`
	TaskMarker       string `json:"task_marker"`
	LabelSeparator   string `json:"label_separator"`
	SubtaskSeparator string `json:"subtask_separator"`
	KeyFormat        string `json:"key_format"`
}

func planFormat() formatResponse {
	return formatResponse{
		FormatVersion:    planning.FormatVersion,
		DayHeader:        planning.DayHeaderTemplate,
		SectionHeader:    planning.HeaderDelimiter + "Title:" + planning.HeaderDelimiter,
		TaskMarker:       planning.TaskMarker,
		LabelSeparator:   planning.LabelSeparator,
		SubtaskSeparator: planning.SubtaskSeparator,
		KeyFormat:        "day-section-task[-subtask], 0-based positions",
	}
}

func (s *Server) registerFormatResource() {
	s.mcpServer.Resource(formatResourceURI).
		Name(formatResourceURI).
		Description("Plan text format and item key convention").
		MimeType("application/json").
		Handler(func(_ context.Context, _ string, _ map[string]string) (*mcplib.ResourceContent, error) {
			data, err := json.Marshal(planFormat())
			if err != nil {
				return nil, err
			}
			return &mcplib.ResourceContent{
				URI:      formatResourceURI,
				MimeType: "application/json",
				Text:     string(data),
			}, nil
		})
}
