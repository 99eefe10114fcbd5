package cache

import (
	"testing"

	"github.com/vijaygarry/doclava/internal/source"
	"github.com/vijaygarry/doclava/internal/symsrc"
)

func sampleSet() *symsrc.Set {
	ret := symsrc.MustParseTypeRef("java.util.List<? extends p.Item>")
	value := "42"
	set := symsrc.NewSet("v1").MustAdd(
		&symsrc.ClassDecl{
			Name: "Api", Package: "p", Modifiers: symsrc.Modifiers{Visibility: "public", Final: true},
			Implements: []symsrc.TypeRef{symsrc.MustParseTypeRef("java.lang.Runnable")},
			Methods: []symsrc.MethodDecl{{
				Name: "items", Modifiers: symsrc.Modifiers{Visibility: "public"}, Return: &ret,
				Throws: []string{"java.io.IOException"}, Pos: source.At("api.xml", 7),
			}},
			Fields: []symsrc.FieldDecl{{
				Name: "ANSWER", Modifiers: symsrc.Modifiers{Visibility: "public", Static: true, Final: true},
				Type: symsrc.MustParseTypeRef("int"), Value: &value,
			}},
			Pos: source.At("api.xml", 3),
		},
		&symsrc.ClassDecl{Name: "Item", Package: "p", Kind: "interface"},
	)
	set.AddPackage(&symsrc.PackageDecl{Name: "p", Comment: "Core API."})
	return set
}

func TestDiskCache_PutGet(t *testing.T) {
	c, err := OpenDir(t.TempDir())
	if err != nil {
		t.Fatalf("OpenDir: %v", err)
	}
	data := []byte("<api></api>")
	key := DigestOf(data)
	if key.IsZero() {
		t.Fatalf("digest must not be zero")
	}

	if _, ok, err := c.Get(key); err != nil || ok {
		t.Fatalf("empty cache: ok=%v err=%v", ok, err)
	}
	if err := c.Put(key, FromSet(sampleSet(), "api.xml")); err != nil {
		t.Fatalf("Put: %v", err)
	}
	p, ok, err := c.Get(key)
	if err != nil || !ok {
		t.Fatalf("Get: ok=%v err=%v", ok, err)
	}
	set, err := p.Set()
	if err != nil {
		t.Fatalf("Set: %v", err)
	}
	if set.Name != "v1" || set.Len() != 2 {
		t.Fatalf("set = %s with %d classes", set.Name, set.Len())
	}
	api, ok := set.Lookup("p.Api")
	if !ok {
		t.Fatalf("p.Api missing")
	}
	if !api.Final || api.Pos != source.At("api.xml", 3) {
		t.Fatalf("class fields lost: %+v", api)
	}
	m := api.Methods[0]
	if m.Return == nil || m.Return.String() != "java.util.List<? extends p.Item>" {
		t.Fatalf("return = %v", m.Return)
	}
	if len(m.Throws) != 1 || m.Pos.Line != 7 {
		t.Fatalf("method = %+v", m)
	}
	if f := api.Fields[0]; f.Value == nil || *f.Value != "42" {
		t.Fatalf("field value lost")
	}
	if pkgs := set.Packages(); len(pkgs) != 1 || pkgs[0].Comment != "Core API." {
		t.Fatalf("packages = %v", pkgs)
	}
}

func TestDiskCache_DropAll(t *testing.T) {
	c, err := OpenDir(t.TempDir())
	if err != nil {
		t.Fatalf("OpenDir: %v", err)
	}
	key := DigestOf([]byte("x"))
	if err := c.Put(key, FromSet(sampleSet(), "x")); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if err := c.DropAll(); err != nil {
		t.Fatalf("DropAll: %v", err)
	}
	if _, ok, err := c.Get(key); err != nil || ok {
		t.Fatalf("after DropAll: ok=%v err=%v", ok, err)
	}
	// Still usable.
	if err := c.Put(key, FromSet(sampleSet(), "x")); err != nil {
		t.Fatalf("Put after DropAll: %v", err)
	}
}

func TestNilCacheIsNoop(t *testing.T) {
	var c *DiskCache
	if err := c.Put(Digest{1}, &Payload{}); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if _, ok, _ := c.Get(Digest{1}); ok {
		t.Fatalf("nil cache must miss")
	}
}
