package models

import (
	"encoding/json"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/bsontype"
)

// Level is a skill proficiency. The integer values give the total order; the
// wire and storage form is always the name.
type Level int

const (
	LevelBeginner Level = iota + 1
	LevelElementary
	LevelIntermediate
	LevelAdvanced
	LevelExpert
)

var levelNames = map[Level]string{
	LevelBeginner:     "Beginner",
	LevelElementary:   "Elementary",
	LevelIntermediate: "Intermediate",
	LevelAdvanced:     "Advanced",
	LevelExpert:       "Expert",
}

// Levels lists every valid level in ascending order.
func Levels() []Level {
	return []Level{LevelBeginner, LevelElementary, LevelIntermediate, LevelAdvanced, LevelExpert}
}

// ParseLevel converts a level name into a Level.
func ParseLevel(s string) (Level, error) {
	for l, name := range levelNames {
		if name == s {
			return l, nil
		}
	}
	return 0, fmt.Errorf("unknown level %q", s)
}

// Valid reports whether l is one of the five defined levels.
func (l Level) Valid() bool {
	_, ok := levelNames[l]
	return ok
}

func (l Level) String() string {
	if name, ok := levelNames[l]; ok {
		return name
	}
	return fmt.Sprintf("Level(%d)", int(l))
}

func (l Level) MarshalJSON() ([]byte, error) {
	if !l.Valid() {
		return nil, fmt.Errorf("marshal level: invalid value %d", int(l))
	}
	return json.Marshal(l.String())
}

// UnmarshalJSON accepts only the level name; numbers are rejected.
func (l *Level) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("level must be one of Beginner, Elementary, Intermediate, Advanced, Expert")
	}
	if s == "" {
		*l = 0
		return nil
	}
	parsed, err := ParseLevel(s)
	if err != nil {
		return err
	}
	*l = parsed
	return nil
}

func (l Level) MarshalBSONValue() (bsontype.Type, []byte, error) {
	if !l.Valid() {
		return 0, nil, fmt.Errorf("marshal level: invalid value %d", int(l))
	}
	return bson.MarshalValue(l.String())
}

func (l *Level) UnmarshalBSONValue(t bsontype.Type, data []byte) error {
	s, ok := bson.RawValue{Type: t, Value: data}.StringValueOK()
	if !ok {
		return fmt.Errorf("unmarshal level: expected string, got %s", t)
	}
	parsed, err := ParseLevel(s)
	if err != nil {
		return err
	}
	*l = parsed
	return nil
}
