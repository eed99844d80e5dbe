package guildbuild

import (
	"errors"
	"testing"

	"github.com/neko-jpg/schoolfestival-bot/pkg/errorx"
	"github.com/stretchr/testify/require"
)

func paths(err error) []string {
	var verrs ValidationErrors
	if !errors.As(err, &verrs) {
		return nil
	}

	result := []string{}
	for _, v := range verrs {
		result = append(result, v.Path)
	}
	return result
}

func Test_ParseTemplate(t *testing.T) {
	template, err := ParseTemplate([]byte(`{
		"version": "1",
		"name": "文化祭",
		"roles": [
			{"name": "AdminOps", "color": "#3498DB", "hoist": true},
			{"name": "Grade-1"}
		],
		"categories": [{
			"name": "announcements",
			"channels": [
				{
					"name": "news",
					"type": "TEXT",
					"topic": "read-only",
					"overwrites": [
						{"role": "@everyone", "allow": ["VIEW_CHANNEL"], "deny": ["send_messages"]},
						{"roleName": "AdminOps", "allow": ["ReadMessages"]}
					]
				},
				{"name": "stage", "kind": "voice", "bitrate": 64000}
			]
		}]
	}`))
	require.NoError(t, err)

	require.Equal(t, "文化祭", template.Name)
	require.Len(t, template.Roles, 2)
	require.Equal(t, "#3498DB", template.Roles[0].Color)
	require.True(t, *template.Roles[0].Hoist)
	require.Nil(t, template.Roles[0].Mentionable)
	require.Nil(t, template.Roles[1].Hoist)

	news := template.Categories[0].Channels[0]
	require.Equal(t, ChannelKindText, news.Kind)
	require.Equal(t, "read-only", *news.Topic)
	require.Len(t, news.Overwrites, 2)
	require.Equal(t, EveryoneRoleName, news.Overwrites[0].RoleName)
	require.Equal(t, []string{"ViewChannel"}, news.Overwrites[0].Allow)
	require.Equal(t, []string{"SendMessages"}, news.Overwrites[0].Deny)
	require.Equal(t, "AdminOps", news.Overwrites[1].RoleName)
	require.Equal(t, []string{"ViewChannel"}, news.Overwrites[1].Allow)
	require.Empty(t, news.Overwrites[1].Deny)

	stage := template.Categories[0].Channels[1]
	require.Equal(t, ChannelKindVoice, stage.Kind)
	require.Equal(t, 64000, *stage.Bitrate)
	require.Nil(t, stage.Topic)
}

func Test_ParseTemplate_NotADocument(t *testing.T) {
	tests := []struct {
		name    string
		data    string
		wantMsg string
	}{
		{name: "truncated", data: `{"version": "1",`, wantMsg: "Template file is not valid JSON"},
		{name: "array", data: `[]`, wantMsg: "Template must be a JSON object"},
		{name: "string", data: `"kyugi"`, wantMsg: "Template must be a JSON object"},
		{name: "null", data: `null`, wantMsg: "Template must be a JSON object"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseTemplate([]byte(tt.data))
			require.Error(t, err)
			require.Contains(t, err.Error(), tt.wantMsg)
			require.Equal(t, errorx.ValidationFailed, errorx.CodeOf(err))
		})
	}
}

func Test_ValidateTemplate(t *testing.T) {
	tests := []struct {
		name      string
		raw       map[string]any
		wantPaths []string
	}{
		{
			name:      "missing version and name",
			raw:       map[string]any{},
			wantPaths: []string{"version", "name"},
		},
		{
			name:      "unsupported version",
			raw:       map[string]any{"version": "2", "name": "x"},
			wantPaths: []string{"version"},
		},
		{
			name: "everyone declared as role",
			raw: map[string]any{
				"version": "1", "name": "x",
				"roles": []any{map[string]any{"name": "@everyone"}},
			},
			wantPaths: []string{"roles[0].name"},
		},
		{
			name: "duplicate role and bad color",
			raw: map[string]any{
				"version": "1", "name": "x",
				"roles": []any{
					map[string]any{"name": "A"},
					map[string]any{"name": "A"},
					map[string]any{"name": "B", "color": "blue", "hoist": "yes"},
				},
			},
			wantPaths: []string{"roles[1].name", "roles[2].color", "roles[2].hoist"},
		},
		{
			name: "empty category and duplicate category",
			raw: map[string]any{
				"version": "1", "name": "x",
				"categories": []any{
					map[string]any{"name": "c", "channels": []any{}},
					map[string]any{"name": "c", "channels": []any{
						map[string]any{"name": "a", "kind": "text"},
					}},
				},
			},
			wantPaths: []string{"categories[0].channels", "categories[1].name"},
		},
		{
			name: "bad channels",
			raw: map[string]any{
				"version": "1", "name": "x",
				"categories": []any{
					map[string]any{"name": "c", "channels": []any{
						map[string]any{"name": "a", "kind": "stage"},
						map[string]any{"name": "b", "kind": "category"},
						map[string]any{"name": "c", "kind": "voice", "bitrate": 1.5},
						map[string]any{"name": "d", "kind": "text"},
						map[string]any{"name": "d", "kind": "text"},
					}},
				},
			},
			wantPaths: []string{
				"categories[0].channels[0].kind",
				"categories[0].channels[1].kind",
				"categories[0].channels[2].bitrate",
				"categories[0].channels[4].name",
			},
		},
		{
			name: "bad overwrites",
			raw: map[string]any{
				"version": "1", "name": "x",
				"categories": []any{
					map[string]any{"name": "c", "channels": []any{
						map[string]any{"name": "a", "kind": "text", "overwrites": []any{
							map[string]any{"roleName": "A", "allow": []any{"Fly"}},
							map[string]any{"roleName": "B", "allow": []any{"SendMessages"}, "deny": []any{"SEND_MESSAGES"}},
							map[string]any{"roleName": "B"},
						}},
					}},
				},
			},
			wantPaths: []string{
				"categories[0].channels[0].overwrites[0].allow[0]",
				"categories[0].channels[0].overwrites[1]",
				"categories[0].channels[0].overwrites[2].roleName",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ValidateTemplate(tt.raw)
			require.Error(t, err)
			require.Equal(t, tt.wantPaths, paths(err))
			require.Equal(t, errorx.ValidationFailed, errorx.CodeOf(err))
		})
	}
}

func Test_ValidationErrors_Error(t *testing.T) {
	err := ValidationErrors{
		{Path: "roles[0].name", Message: "is required"},
		{Message: "Template file is not valid JSON"},
	}

	require.Equal(t,
		"Template validation failed:\n - at path `roles[0].name`: is required\n - Template file is not valid JSON",
		err.Error())
}

func Test_ValidateTemplate_LongTopic(t *testing.T) {
	topic := make([]rune, maxTopicLength+1)
	for i := range topic {
		topic[i] = 'あ'
	}

	_, err := ValidateTemplate(map[string]any{
		"version": "1", "name": "x",
		"categories": []any{
			map[string]any{"name": "c", "channels": []any{
				map[string]any{"name": "a", "kind": "text", "topic": string(topic)},
			}},
		},
	})
	require.Equal(t, []string{"categories[0].channels[0].topic"}, paths(err))
}
