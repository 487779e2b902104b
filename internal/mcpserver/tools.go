package mcpserver

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/qiniu/seqmcp/internal/observability"
	"github.com/qiniu/seqmcp/internal/tools"
	"github.com/rs/zerolog/log"
)

// BuildTool converts a catalog entry into an MCP tool declaration.
func BuildTool(def tools.Definition) mcp.Tool {
	opts := []mcp.ToolOption{
		mcp.WithDescription(def.Description),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithDestructiveHintAnnotation(false),
		mcp.WithOpenWorldHintAnnotation(false),
	}
	for _, p := range def.Params {
		opts = append(opts, paramOption(p))
	}
	return mcp.NewTool(def.Name, opts...)
}

func paramOption(p tools.Param) mcp.ToolOption {
	props := []mcp.PropertyOption{mcp.Description(p.Description)}
	if p.Required {
		props = append(props, mcp.Required())
	}
	if len(p.Enum) > 0 {
		props = append(props, mcp.Enum(p.Enum...))
	}

	switch p.Type {
	case tools.ParamNumber, tools.ParamInteger:
		if p.Type == tools.ParamInteger {
			props = append(props, integerType)
		}
		if p.Min != nil {
			props = append(props, mcp.Min(*p.Min))
		}
		if p.Max != nil {
			props = append(props, mcp.Max(*p.Max))
		}
		if v, ok := p.Default.(int); ok {
			props = append(props, mcp.DefaultNumber(float64(v)))
		}
		return mcp.WithNumber(p.Name, props...)
	default:
		if v, ok := p.Default.(string); ok {
			props = append(props, mcp.DefaultString(v))
		}
		return mcp.WithString(p.Name, props...)
	}
}

// integerType narrows a WithNumber property to a JSON Schema integer.
func integerType(schema map[string]any) {
	schema["type"] = "integer"
}

// ToolHandler routes an MCP tool call through the dispatcher. Dispatcher
// failures are returned as IsError results so the model can read them,
// since a handler error would reach the client as an internal error. The
// text keeps the failure kind distinguishable: "invalid parameters: ..."
// for bad arguments, "unknown tool: ..." for an unregistered name, and
// the upstream error text otherwise.
func ToolHandler(name string, dispatcher *tools.Dispatcher, metrics *observability.MetricsCollector) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		logger := log.With().
			Str("request_id", uuid.NewString()).
			Str("tool", name).
			Logger()

		start := time.Now()
		text, err := dispatcher.Call(ctx, name, req.GetArguments())
		duration := time.Since(start)

		outcome := outcomeOf(err)
		metrics.RecordToolCall(name, outcome, duration)

		if err != nil {
			logger.Warn().Err(err).Str("outcome", outcome).Dur("duration", duration).Msg("tool call failed")
			return mcp.NewToolResultError(err.Error()), nil
		}

		logger.Info().Dur("duration", duration).Int("bytes", len(text)).Msg("tool call completed")
		return mcp.NewToolResultText(text), nil
	}
}

func outcomeOf(err error) string {
	var invalid *tools.ValidationError
	var unknown *tools.UnknownOperationError
	switch {
	case err == nil:
		return observability.OutcomeSuccess
	case errors.As(err, &invalid):
		return observability.OutcomeInvalidParams
	case errors.As(err, &unknown):
		return observability.OutcomeUnknownTool
	default:
		return observability.OutcomeUpstreamFailure
	}
}
