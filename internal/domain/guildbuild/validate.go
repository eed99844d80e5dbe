package guildbuild

import (
	"encoding/json"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/mitchellh/mapstructure"
	"github.com/neko-jpg/schoolfestival-bot/pkg/enum"
)

const maxTopicLength = 1024

var hexColorRegex = regexp.MustCompile(`^#?[0-9a-fA-F]{6}$`)

// ParseTemplate decodes a JSON template document and validates it.
func ParseTemplate(data []byte) (*Template, error) {
	var doc any
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, ValidationErrors{{Message: "Template file is not valid JSON: " + err.Error()}}
	}

	raw, ok := doc.(map[string]any)
	if !ok {
		return nil, ValidationErrors{{Message: "Template must be a JSON object"}}
	}

	return ValidateTemplate(raw)
}

// ValidateTemplate checks a raw template document and returns the typed
// template, or ValidationErrors holding every violation found.
func ValidateTemplate(raw map[string]any) (*Template, error) {
	v := &validator{}
	doc := v.document(raw)
	if len(v.errs) > 0 {
		return nil, v.errs
	}

	var template Template
	if err := mapstructure.Decode(doc, &template); err != nil {
		return nil, ValidationErrors{{Message: err.Error()}}
	}

	return &template, nil
}

type validator struct {
	errs ValidationErrors
}

func (v *validator) add(path, format string, a ...any) {
	v.errs = append(v.errs, ValidationError{Path: path, Message: fmt.Sprintf(format, a...)})
}

func join(path string, key any) string {
	switch k := key.(type) {
	case int:
		return path + "[" + strconv.Itoa(k) + "]"
	default:
		if path == "" {
			return fmt.Sprint(k)
		}
		return path + "." + fmt.Sprint(k)
	}
}

// field returns obj[key], falling back to the legacy key when given.
func field(obj map[string]any, key string, legacy ...string) (any, bool) {
	if value, ok := obj[key]; ok {
		return value, true
	}

	for _, l := range legacy {
		if value, ok := obj[l]; ok {
			return value, true
		}
	}

	return nil, false
}

func (v *validator) requiredString(obj map[string]any, path, key string, legacy ...string) (string, bool) {
	value, ok := field(obj, key, legacy...)
	if !ok || value == nil {
		v.add(join(path, key), "is required")
		return "", false
	}

	s, ok := value.(string)
	if !ok {
		v.add(join(path, key), "must be a string")
		return "", false
	}

	if s == "" {
		v.add(join(path, key), "must not be empty")
		return "", false
	}

	return s, true
}

func (v *validator) optionalBool(obj map[string]any, out map[string]any, path, key string) {
	value, ok := obj[key]
	if !ok || value == nil {
		return
	}

	b, ok := value.(bool)
	if !ok {
		v.add(join(path, key), "must be a boolean")
		return
	}

	out[key] = b
}

func (v *validator) array(obj map[string]any, path, key string) ([]any, bool) {
	value, ok := obj[key]
	if !ok || value == nil {
		return nil, true
	}

	array, ok := value.([]any)
	if !ok {
		v.add(join(path, key), "must be an array")
		return nil, false
	}

	return array, true
}

func (v *validator) object(value any, path string) (map[string]any, bool) {
	obj, ok := value.(map[string]any)
	if !ok {
		v.add(path, "must be an object")
		return nil, false
	}

	return obj, true
}

func (v *validator) document(raw map[string]any) map[string]any {
	doc := map[string]any{}

	switch version, ok := raw["version"]; {
	case !ok:
		v.add("version", "is required")
	case version != TemplateVersion:
		v.add("version", "must be %q", TemplateVersion)
	default:
		doc["version"] = TemplateVersion
	}

	if name, ok := v.requiredString(raw, "", "name"); ok {
		doc["name"] = name
	}

	roles := []any{}
	roleNames := map[string]bool{}
	if array, ok := v.array(raw, "", "roles"); ok {
		for i, item := range array {
			path := join("roles", i)
			role := v.role(item, path)
			if role == nil {
				continue
			}

			name := role["name"].(string)
			if roleNames[name] {
				v.add(join(path, "name"), "duplicate role name %q", name)
				continue
			}

			roleNames[name] = true
			roles = append(roles, role)
		}
	}
	doc["roles"] = roles

	categories := []any{}
	categoryNames := map[string]bool{}
	if array, ok := v.array(raw, "", "categories"); ok {
		for i, item := range array {
			path := join("categories", i)
			category := v.category(item, path)
			if category == nil {
				continue
			}

			name := category["name"].(string)
			if categoryNames[name] {
				v.add(join(path, "name"), "duplicate category name %q", name)
				continue
			}

			categoryNames[name] = true
			categories = append(categories, category)
		}
	}
	doc["categories"] = categories

	return doc
}

func (v *validator) role(item any, path string) map[string]any {
	obj, ok := v.object(item, path)
	if !ok {
		return nil
	}

	role := map[string]any{}
	name, nameOK := v.requiredString(obj, path, "name")
	if nameOK && name == EveryoneRoleName {
		v.add(join(path, "name"), "%s cannot be declared as a role", EveryoneRoleName)
		nameOK = false
	}

	if value, ok := obj["color"]; ok && value != nil {
		color, isString := value.(string)
		if !isString || !hexColorRegex.MatchString(color) {
			v.add(join(path, "color"), "must be a hex color like #3498DB")
		} else {
			role["color"] = color
		}
	}

	v.optionalBool(obj, role, path, "hoist")
	v.optionalBool(obj, role, path, "mentionable")

	if !nameOK {
		return nil
	}

	role["name"] = name
	return role
}

func (v *validator) category(item any, path string) map[string]any {
	obj, ok := v.object(item, path)
	if !ok {
		return nil
	}

	name, nameOK := v.requiredString(obj, path, "name")

	channels := []any{}
	channelNames := map[string]bool{}
	array, ok := v.array(obj, path, "channels")
	if ok && len(array) == 0 {
		v.add(join(path, "channels"), "a category must contain at least one channel")
	}

	for i, item := range array {
		channelPath := join(join(path, "channels"), i)
		channel := v.channel(item, channelPath)
		if channel == nil {
			continue
		}

		channelName := channel["name"].(string)
		if channelNames[channelName] {
			v.add(join(channelPath, "name"), "duplicate channel name %q in category", channelName)
			continue
		}

		channelNames[channelName] = true
		channels = append(channels, channel)
	}

	if !nameOK {
		return nil
	}

	return map[string]any{"name": name, "channels": channels}
}

func (v *validator) channel(item any, path string) map[string]any {
	obj, ok := v.object(item, path)
	if !ok {
		return nil
	}

	channel := map[string]any{}
	name, nameOK := v.requiredString(obj, path, "name")

	kindOK := false
	if s, ok := v.requiredString(obj, path, "kind", "type"); ok {
		kind, err := enum.ToEnum[ChannelKind](strings.ToLower(s))
		if err != nil || kind == ChannelKindCategory {
			v.add(join(path, "kind"), "must be one of text, voice, forum")
		} else {
			channel["kind"] = kind
			kindOK = true
		}
	}

	if value, ok := obj["topic"]; ok && value != nil {
		topic, isString := value.(string)
		switch {
		case !isString:
			v.add(join(path, "topic"), "must be a string")
		case utf8.RuneCountInString(topic) > maxTopicLength:
			v.add(join(path, "topic"), "must be at most %d characters", maxTopicLength)
		default:
			channel["topic"] = topic
		}
	}

	if value, ok := obj["bitrate"]; ok && value != nil {
		f, isNumber := value.(float64)
		if !isNumber || f != math.Trunc(f) || f <= 0 {
			v.add(join(path, "bitrate"), "must be a positive integer")
		} else {
			channel["bitrate"] = int(f)
		}
	}

	overwrites := []any{}
	seen := map[string]bool{}
	if array, ok := v.array(obj, path, "overwrites"); ok {
		for i, item := range array {
			overwritePath := join(join(path, "overwrites"), i)
			overwrite := v.overwrite(item, overwritePath)
			if overwrite == nil {
				continue
			}

			roleName := overwrite["roleName"].(string)
			if seen[roleName] {
				v.add(join(overwritePath, "roleName"), "duplicate overwrite for role %q", roleName)
				continue
			}

			seen[roleName] = true
			overwrites = append(overwrites, overwrite)
		}
	}
	channel["overwrites"] = overwrites

	if !nameOK || !kindOK {
		return nil
	}

	channel["name"] = name
	return channel
}

func (v *validator) overwrite(item any, path string) map[string]any {
	obj, ok := v.object(item, path)
	if !ok {
		return nil
	}

	roleName, roleOK := v.requiredString(obj, path, "roleName", "role")
	allow := v.flags(obj, path, "allow")
	deny := v.flags(obj, path, "deny")

	denied := map[string]bool{}
	for _, flag := range deny {
		denied[flag] = true
	}

	for _, flag := range allow {
		if denied[flag] {
			v.add(path, "permission %s is both allowed and denied", flag)
		}
	}

	if !roleOK {
		return nil
	}

	return map[string]any{"roleName": roleName, "allow": allow, "deny": deny}
}

func (v *validator) flags(obj map[string]any, path, key string) []string {
	flags := []string{}
	array, ok := v.array(obj, path, key)
	if !ok {
		return flags
	}

	seen := map[string]bool{}
	for i, item := range array {
		flagPath := join(join(path, key), i)
		name, isString := item.(string)
		if !isString {
			v.add(flagPath, "must be a string")
			continue
		}

		canonical, ok := CanonicalPermission(name)
		if !ok {
			v.add(flagPath, "unknown permission flag %q", name)
			continue
		}

		if !seen[canonical] {
			seen[canonical] = true
			flags = append(flags, canonical)
		}
	}

	return flags
}
