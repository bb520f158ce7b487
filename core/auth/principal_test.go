package auth

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseRole(t *testing.T) {
	for _, r := range Roles {
		got, err := ParseRole(r.String())
		assert.NoError(t, err)
		assert.Equal(t, r, got)
	}
	got, err := ParseRole(" Instructor ")
	assert.NoError(t, err)
	assert.Equal(t, RoleInstructor, got)

	_, err = ParseRole("teacher")
	assert.Error(t, err)
	assert.Equal(t, "Role(0)", Role(0).String())
}

func TestPrincipal(t *testing.T) {
	tests := []struct {
		name       string
		p          Principal
		wantAuthed bool
		wantAdmin  bool
		wantInstr  bool
		wantStud   bool
	}{
		{name: "zero", p: Principal{}},
		{name: "no role", p: Principal{ID: 1}},
		{name: "bad role", p: Principal{ID: 1, Role: 9}},
		{name: "no id", p: Principal{Role: RoleAdmin}},
		{name: "admin", p: Principal{ID: 1, Role: RoleAdmin}, wantAuthed: true, wantAdmin: true},
		{name: "instructor", p: Principal{ID: 2, Role: RoleInstructor}, wantAuthed: true, wantInstr: true},
		{name: "student", p: Principal{ID: 3, Role: RoleStudent}, wantAuthed: true, wantStud: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantAuthed, tt.p.IsAuthenticated())
			assert.Equal(t, tt.wantAdmin, tt.p.IsAdmin())
			assert.Equal(t, tt.wantInstr, tt.p.IsInstructor())
			assert.Equal(t, tt.wantStud, tt.p.IsStudent())
		})
	}
}

func TestContext(t *testing.T) {
	_, ok := FromContext(context.Background())
	assert.False(t, ok)

	p := Principal{ID: 4, Role: RoleStudent}
	got, ok := FromContext(WithPrincipal(context.Background(), p))
	assert.True(t, ok)
	assert.Equal(t, p, got)

	_, ok = FromContext(WithPrincipal(context.Background(), Principal{}))
	assert.False(t, ok)
}
