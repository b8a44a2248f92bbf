package starlang

import (
	"strings"
	"testing"
)

const enemySchema = `schema Enemy:
  required: { name: string }
  optional: { hp: number = 0, speed: number = 1 }
  fn hit(dmg):
    set self.hp: self.hp - dmg
  fn label():
    return self.name + " (" + self.hp + ")"
`

func TestInstanceDefaultsAndOverrides(t *testing.T) {
	in := loadSrc(t, enemySchema+`Enemy grunt: { name: "grunt" }
Enemy boss:
  name: "boss"
  hp: 100
let gruntHp = grunt.hp
let bossHp = boss.hp
let bossSpeed = boss.speed
`)
	wantNum(t, in, "gruntHp", 0)
	wantNum(t, in, "bossHp", 100)
	wantNum(t, in, "bossSpeed", 1)
}

func TestMissingRequiredFieldFails(t *testing.T) {
	err := New().Load(enemySchema+"Enemy ghost: { hp: 5 }\n", "test.star")
	if err == nil {
		t.Fatal("expected construction to fail without the required field")
	}
	re, ok := err.(*RuntimeError)
	if !ok {
		t.Fatalf("error type = %T, want *RuntimeError", err)
	}
	if !strings.Contains(re.Msg, `required field "name"`) {
		t.Errorf("error %q does not name the missing field", re.Msg)
	}
}

func TestMethodsBindSelf(t *testing.T) {
	in := loadSrc(t, enemySchema+`Enemy boss: { name: "boss", hp: 100 }
boss.hit(30)
boss.hit(20)
let hp = boss.hp
let label = boss.label()
`)
	wantNum(t, in, "hp", 50)
	wantStr(t, in, "label", "boss (50)")
}

func TestMethodClosureSeesDefiningScope(t *testing.T) {
	in := loadSrc(t, `let bonus = 5
schema Scorer:
  optional: { score: number = 0 }
  fn bump():
    set self.score: self.score + bonus
Scorer s: {}
s.bump()
let got = s.score
`)
	wantNum(t, in, "got", 5)
}

func TestSchemaDefaultsUseDefiningEnvironment(t *testing.T) {
	in := loadSrc(t, `let startHp = 40
schema Unit:
  optional: { hp: number = startHp }
let startHp2 = "shadow"
Unit u: {}
let got = u.hp
`)
	wantNum(t, in, "got", 40)
}

func TestExtendsRecordsParentWithoutMerging(t *testing.T) {
	in := loadSrc(t, `schema Actor:
  optional: { pos: number = 0 }
schema Enemy extends Actor:
  optional: { hp: number = 10 }
Enemy e: {}
let hp = e.hp
`)
	wantNum(t, in, "hp", 10)
	// Parent fields are not inherited.
	e := getVal(t, in, "e").Instance()
	if _, ok := e.Fields.Get("pos"); ok {
		t.Error("child instance inherited a parent field; extends only records the name")
	}
	if e.Schema.Parent != "Actor" {
		t.Errorf("parent = %q, want Actor", e.Schema.Parent)
	}
}

func TestUnknownSchemaFails(t *testing.T) {
	err := New().Load("Ghost g: {}\n", "test.star")
	re, ok := err.(*RuntimeError)
	if !ok || !strings.Contains(re.Msg, "unknown schema") {
		t.Fatalf("error = %v, want unknown schema fault", err)
	}
}

func TestUnknownParentSchemaFails(t *testing.T) {
	err := New().Load("schema A extends Nope:\n  optional: { x: number = 1 }\n", "test.star")
	re, ok := err.(*RuntimeError)
	if !ok || !strings.Contains(re.Msg, "unknown parent schema") {
		t.Fatalf("error = %v, want unknown parent schema fault", err)
	}
}

func TestDirtyTracking(t *testing.T) {
	in := loadSrc(t, enemySchema+`Enemy boss: { name: "boss", hp: 100 }
set boss.speed: 3
`)
	inst := getVal(t, in, "boss").Instance()
	if !inst.Dirty["speed"] {
		t.Error("set on an instance field did not mark it dirty")
	}
	if inst.Dirty["hp"] {
		t.Error("construction-time values must not be dirty")
	}
}
