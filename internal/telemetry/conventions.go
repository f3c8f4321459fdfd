package telemetry

// Attribute names for tool spans and metrics
const (
	AttrMCPToolName      = "mcp.tool.name"
	AttrMCPToolSuccess   = "mcp.tool.result.success"
	AttrMCPToolError     = "mcp.tool.result.error"
	AttrMCPToolErrorType = "mcp.tool.result.error_type"
	AttrMCPInvocationID  = "mcp.invocation.id"
	AttrMCPTransport     = "mcp.transport"
	AttrMCPToolArguments = "mcp.tool.arguments"
	AttrArgsTruncated    = "mcp.tool.arguments.truncated"
)

// Span names
const (
	SpanNameToolExecute = "mcp.tool.execute"
)

const instrumentationName = "mcp-gsheets"
