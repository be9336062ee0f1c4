package tglink

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParsePostLink(t *testing.T) {
	tests := []struct {
		link string
		want Post
		peer string
	}{
		{"https://t.me/durov/123", Post{Username: "durov", MessageID: 123}, "durov"},
		{"t.me/durov/5", Post{Username: "durov", MessageID: 5}, "durov"},
		{"@my_channel/42", Post{Username: "my_channel", MessageID: 42}, "my_channel"},
		{"https://t.me/c/123456/789", Post{ChatID: 123456, MessageID: 789}, "-100123456"},
		{"http://t.me/c/123456/789?single", Post{ChatID: 123456, MessageID: 789}, "-100123456"},
		{"https://t.me/c/123456/10/789#x", Post{ChatID: 123456, MessageID: 789}, "-100123456"},
		{" https://t.me/durov/7/ ", Post{Username: "durov", MessageID: 7}, "durov"},
	}

	for _, tt := range tests {
		t.Run(tt.link, func(t *testing.T) {
			got, err := ParsePostLink(tt.link)
			require.NoError(t, err)
			require.Equal(t, tt.want, got)
			require.Equal(t, tt.peer, got.Peer())
		})
	}
}

func TestParsePostLink_Invalid(t *testing.T) {
	for _, link := range []string{"", "https://t.me/durov", "t.me/c/abc/1", "t.me/bad-name/1", "t.me/durov/0", "https://example.com"} {
		_, err := ParsePostLink(link)
		require.ErrorIs(t, err, ErrInvalidLink, link)
	}
}

func TestDisplayIDs(t *testing.T) {
	require.Equal(t, "-100123", ChannelDisplayID(123))
	require.Equal(t, "-77", ChatDisplayID(77))
	require.Equal(t, "-100123:45", TopicDisplayID("-100123", 45))
}

func TestParseDisplayID(t *testing.T) {
	d, err := ParseDisplayID("-100123:45")
	require.NoError(t, err)
	require.Equal(t, DisplayID{ID: 123, Channel: true, TopicID: 45}, d)
	require.Equal(t, "-100123:45", d.String())
	require.Equal(t, "-100123", d.ChatDisplayID())

	d, err = ParseDisplayID("-77")
	require.NoError(t, err)
	require.Equal(t, DisplayID{ID: 77}, d)
	require.Equal(t, "-77", d.String())

	for _, bad := range []string{"", "123", "-", "-100x", "-100123:", "-100123:0", "-1:a"} {
		_, err := ParseDisplayID(bad)
		require.ErrorIs(t, err, ErrInvalidDisplayID, bad)
	}
}

func TestParseDisplayID_RoundTrip(t *testing.T) {
	for _, s := range []string{"-1001", "-100987654321:3", "-5"} {
		d, err := ParseDisplayID(s)
		require.NoError(t, err)
		require.Equal(t, s, d.String())
	}
}

func TestMessageLink(t *testing.T) {
	require.Equal(t, "https://t.me/c/123/9", MessageLink("-100123", 0, 9))
	require.Equal(t, "https://t.me/c/77/9", MessageLink("-77", 0, 9))
	require.Equal(t, "https://t.me/c/123/4/9", MessageLink("-100123:4", 4, 9))
}

func TestParseJoinTarget(t *testing.T) {
	tests := []struct {
		token string
		want  JoinTarget
	}{
		{"https://t.me/+AbCd_12-x", JoinTarget{Invite: "AbCd_12-x"}},
		{"t.me/joinchat/XyZ987", JoinTarget{Invite: "XyZ987"}},
		{"https://telegram.me/+q1", JoinTarget{Invite: "q1"}},
		{"@groupA", JoinTarget{Username: "groupA"}},
		{" https://t.me/group_b ", JoinTarget{Username: "group_b"}},
		{"plain_name", JoinTarget{Username: "plain_name"}},
		{"-1001234567890", JoinTarget{DisplayID: "-1001234567890"}},
		{"-4455667", JoinTarget{DisplayID: "-4455667"}},
		{"1234567890", JoinTarget{DisplayID: "-1001234567890"}},
	}

	for _, tt := range tests {
		t.Run(tt.token, func(t *testing.T) {
			got, err := ParseJoinTarget(tt.token)
			require.NoError(t, err)
			require.Equal(t, tt.want, got)
		})
	}

	require.Equal(t, "+q1", JoinTarget{Invite: "q1"}.String())
	require.Equal(t, "@groupA", JoinTarget{Username: "groupA"}.String())
}

func TestParseJoinTarget_Invalid(t *testing.T) {
	for _, token := range []string{"", "@", "ab", "1234", "has space", "https://example.com/x", "9name"} {
		_, err := ParseJoinTarget(token)
		require.ErrorIs(t, err, ErrInvalidJoinTarget, token)
	}
}

func TestSplitTargets(t *testing.T) {
	require.Equal(t, []string{"@a", "https://t.me/b", "-100123456", "c"},
		SplitTargets("@a, https://t.me/b\n-100123456 | c,,\n"))
	require.Empty(t, SplitTargets(" , \n"))
}
