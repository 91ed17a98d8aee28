package awssecurityhub

import (
	"strconv"
	"strings"

	shtypes "github.com/aws/aws-sdk-go-v2/service/securityhub/types"

	"github.com/pankaj-dahiya-devops/shcx/internal/models"
)

// toOption flattens the ConfigurationOptions union into a ParameterOption.
// The member name becomes the option type; values the member does not carry
// are reported as N/A.
func toOption(u shtypes.ConfigurationOptions) (models.ParameterOption, bool) {
	na := models.NotAvailable
	switch v := u.(type) {
	case *shtypes.ConfigurationOptionsMemberInteger:
		return models.ParameterOption{
			Type:    "Integer",
			Default: int32Ptr(v.Value.DefaultValue),
			Min:     int32Ptr(v.Value.Min),
			Max:     int32Ptr(v.Value.Max),
		}, true
	case *shtypes.ConfigurationOptionsMemberIntegerList:
		return models.ParameterOption{
			Type:    "IntegerList",
			Default: int32List(v.Value.DefaultValue),
			Min:     int32Ptr(v.Value.Min),
			Max:     int32Ptr(v.Value.Max),
		}, true
	case *shtypes.ConfigurationOptionsMemberDouble:
		return models.ParameterOption{
			Type:    "Double",
			Default: float64Ptr(v.Value.DefaultValue),
			Min:     float64Ptr(v.Value.Min),
			Max:     float64Ptr(v.Value.Max),
		}, true
	case *shtypes.ConfigurationOptionsMemberBoolean:
		def := na
		if v.Value.DefaultValue != nil {
			def = strconv.FormatBool(*v.Value.DefaultValue)
		}
		return models.ParameterOption{Type: "Boolean", Default: def, Min: na, Max: na}, true
	case *shtypes.ConfigurationOptionsMemberEnum:
		return models.ParameterOption{Type: "Enum", Default: stringPtr(v.Value.DefaultValue), Min: na, Max: na}, true
	case *shtypes.ConfigurationOptionsMemberEnumList:
		return models.ParameterOption{Type: "EnumList", Default: stringList(v.Value.DefaultValue), Min: na, Max: na}, true
	case *shtypes.ConfigurationOptionsMemberString:
		return models.ParameterOption{Type: "String", Default: stringPtr(v.Value.DefaultValue), Min: na, Max: na}, true
	case *shtypes.ConfigurationOptionsMemberStringList:
		return models.ParameterOption{Type: "StringList", Default: stringList(v.Value.DefaultValue), Min: na, Max: na}, true
	case *shtypes.UnknownUnionMember:
		return models.ParameterOption{Type: v.Tag, Default: na, Min: na, Max: na}, true
	default:
		return models.ParameterOption{}, false
	}
}

func int32Ptr(p *int32) string {
	if p == nil {
		return models.NotAvailable
	}
	return strconv.FormatInt(int64(*p), 10)
}

func float64Ptr(p *float64) string {
	if p == nil {
		return models.NotAvailable
	}
	return strconv.FormatFloat(*p, 'g', -1, 64)
}

func stringPtr(p *string) string {
	if p == nil || *p == "" {
		return models.NotAvailable
	}
	return *p
}

func int32List(vals []int32) string {
	if len(vals) == 0 {
		return models.NotAvailable
	}
	parts := make([]string, len(vals))
	for i, v := range vals {
		parts[i] = strconv.FormatInt(int64(v), 10)
	}
	return strings.Join(parts, ", ")
}

func stringList(vals []string) string {
	if len(vals) == 0 {
		return models.NotAvailable
	}
	return strings.Join(vals, ", ")
}
