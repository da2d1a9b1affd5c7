package imap

import (
	"strings"
)

// IDData is the client identification sent with the ID command.
//
// See RFC 2971.
type IDData struct {
	Name        string
	Version     string
	OS          string
	OSVersion   string
	Vendor      string
	SupportURL  string
	Address     string
	Date        string
	Command     string
	Arguments   string
	Environment string

	// Params holds every field/value pair in the order they were sent,
	// including the ones mapped above. A nil value stands for NIL.
	Params []IDParam
}

// IDParam is a single ID field/value pair.
type IDParam struct {
	Key   string
	Value *string
}

// Set records a field/value pair and fills the matching well-known field.
func (data *IDData) Set(key string, value *string) {
	data.Params = append(data.Params, IDParam{Key: key, Value: value})
	if value == nil {
		return
	}
	var field *string
	switch strings.ToLower(key) {
	case "name":
		field = &data.Name
	case "version":
		field = &data.Version
	case "os":
		field = &data.OS
	case "os-version":
		field = &data.OSVersion
	case "vendor":
		field = &data.Vendor
	case "support-url":
		field = &data.SupportURL
	case "address":
		field = &data.Address
	case "date":
		field = &data.Date
	case "command":
		field = &data.Command
	case "arguments":
		field = &data.Arguments
	case "environment":
		field = &data.Environment
	default:
		return
	}
	*field = *value
}
