package observable

import "testing"

type codecTestRecord struct {
	Name  string `json:"name" yaml:"name" toml:"name"`
	Value int    `json:"value" yaml:"value" toml:"value"`
}

func TestJSONCodec_Unmarshal(t *testing.T) {
	var rec codecTestRecord
	if err := (JSONCodec{}).Unmarshal([]byte(`{"name": "test", "value": 42}`), &rec); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	if rec.Name != "test" || rec.Value != 42 {
		t.Errorf("unexpected record %+v", rec)
	}
}

func TestJSONCodec_UnmarshalInvalid(t *testing.T) {
	var rec codecTestRecord
	if err := (JSONCodec{}).Unmarshal([]byte(`{not valid json}`), &rec); err == nil {
		t.Error("expected error for invalid JSON")
	}
}

func TestJSONCodec_KeepsAbsentFields(t *testing.T) {
	rec := codecTestRecord{Name: "keep", Value: 1}
	if err := (JSONCodec{}).Unmarshal([]byte(`{"value": 2}`), &rec); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	if rec.Name != "keep" || rec.Value != 2 {
		t.Errorf("unexpected record %+v", rec)
	}
}

func TestYAMLCodec_Unmarshal(t *testing.T) {
	var rec codecTestRecord
	if err := (YAMLCodec{}).Unmarshal([]byte("name: test\nvalue: 42"), &rec); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	if rec.Name != "test" || rec.Value != 42 {
		t.Errorf("unexpected record %+v", rec)
	}
}

func TestYAMLCodec_UnmarshalInvalid(t *testing.T) {
	var rec codecTestRecord
	if err := (YAMLCodec{}).Unmarshal([]byte("name: [unclosed"), &rec); err == nil {
		t.Error("expected error for invalid YAML")
	}
}

func TestTOMLCodec_Unmarshal(t *testing.T) {
	var rec codecTestRecord
	if err := (TOMLCodec{}).Unmarshal([]byte("name = \"test\"\nvalue = 42\n"), &rec); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	if rec.Name != "test" || rec.Value != 42 {
		t.Errorf("unexpected record %+v", rec)
	}
}

func TestTOMLCodec_UnmarshalInvalid(t *testing.T) {
	var rec codecTestRecord
	if err := (TOMLCodec{}).Unmarshal([]byte("name = "), &rec); err == nil {
		t.Error("expected error for invalid TOML")
	}
}

func TestCodec_ContentTypes(t *testing.T) {
	cases := map[string]Codec{
		"application/json":   JSONCodec{},
		"application/x-yaml": YAMLCodec{},
		"application/toml":   TOMLCodec{},
	}
	for want, codec := range cases {
		if got := codec.ContentType(); got != want {
			t.Errorf("expected %q, got %q", want, got)
		}
	}
}

func TestCodecs_MarshalRoundTrip(t *testing.T) {
	for _, codec := range []Codec{JSONCodec{}, YAMLCodec{}, TOMLCodec{}} {
		data, err := codec.Marshal(codecTestRecord{Name: "rt", Value: 3})
		if err != nil {
			t.Fatalf("%T Marshal failed: %v", codec, err)
		}
		var rec codecTestRecord
		if err := codec.Unmarshal(data, &rec); err != nil {
			t.Fatalf("%T Unmarshal failed: %v", codec, err)
		}
		if rec.Name != "rt" || rec.Value != 3 {
			t.Errorf("%T: unexpected record %+v", codec, rec)
		}
	}
}

func TestCodecForPath(t *testing.T) {
	cases := map[string]string{
		"state.yaml": "application/x-yaml",
		"state.YML":  "application/x-yaml",
		"state.toml": "application/toml",
		"state.json": "application/json",
		"state":      "application/json",
	}
	for path, want := range cases {
		if got := CodecForPath(path).ContentType(); got != want {
			t.Errorf("CodecForPath(%q) = %s, want %s", path, got, want)
		}
	}
}
