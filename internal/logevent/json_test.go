package logevent

import "testing"

func TestFieldsFromJSON(t *testing.T) {
	f, err := FieldsFromJSON([]byte(`{
		"name": "exp01",
		"trial": 3,
		"ok": true,
		"none": null,
		"gains": [1.5, 2.5],
		"tags": ["fly", "closed-loop"],
		"rig": {"camera": "ptgrey"}
	}`))
	if err != nil {
		t.Fatalf("FieldsFromJSON: %v", err)
	}
	if f["name"].AsString() != "exp01" {
		t.Fatalf("name = %q", f["name"].AsString())
	}
	if f["trial"].Kind() != KindFloat || f["trial"].AsFloat() != 3 {
		t.Fatalf("trial = %v (%s)", f["trial"].AsFloat(), f["trial"].Kind())
	}
	if !f["ok"].AsBool() || f["none"].Kind() != KindNull {
		t.Fatal("bool/null conversion wrong")
	}
	if got := f["gains"].AsFloats(); len(got) != 2 || got[1] != 2.5 {
		t.Fatalf("gains = %v", got)
	}
	if got := f["tags"].AsStrings(); len(got) != 2 || got[0] != "fly" {
		t.Fatalf("tags = %v", got)
	}
	if f["rig"].AsMap()["camera"].AsString() != "ptgrey" {
		t.Fatal("nested object conversion wrong")
	}
	if err := f.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
}

func TestFieldsFromJSONRejectsMixedLists(t *testing.T) {
	if _, err := FieldsFromJSON([]byte(`{"xs": [1, "two"]}`)); err == nil {
		t.Fatal("mixed list should fail")
	}
	if _, err := FieldsFromJSON([]byte(`{"xs": [{"a": 1}]}`)); err == nil {
		t.Fatal("object list should fail")
	}
}
