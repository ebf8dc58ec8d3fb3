// Package domain defines the MCP tool surface for the engine: input and
// output schemas, tool declarations and the handlers binding them to the
// game service.
package domain
