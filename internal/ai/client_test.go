package ai

import (
	"testing"

	"github.com/santhosh-tekuri/jsonschema/v5"
	. "github.com/smartystreets/goconvey/convey"
)

func TestExtractJSON(t *testing.T) {
	Convey("ExtractJSON 从模型回复中提取 JSON 对象", t, func() {
		Convey("裸 JSON 原样返回", func() {
			payload, err := ExtractJSON(`{"a": 1}`)
			So(err, ShouldBeNil)
			So(string(payload), ShouldEqual, `{"a": 1}`)
		})

		Convey("容忍 markdown 代码围栏", func() {
			payload, err := ExtractJSON("```json\n{\"a\": 1}\n```")
			So(err, ShouldBeNil)
			So(string(payload), ShouldEqual, `{"a": 1}`)
		})

		Convey("容忍对象前后的说明文字", func() {
			payload, err := ExtractJSON(`Sure, here it is: {"a": 1} Hope that helps!`)
			So(err, ShouldBeNil)
			So(string(payload), ShouldEqual, `{"a": 1}`)
		})

		Convey("没有 JSON 对象时报错", func() {
			_, err := ExtractJSON("no json here")
			So(err, ShouldNotBeNil)
		})
	})
}

func TestValidate(t *testing.T) {
	const schemaJSON = `{
	  "type": "object",
	  "additionalProperties": false,
	  "properties": {
	    "diet": {"type": "string", "enum": ["omnivore", "vegetarian", "vegan"]},
	    "favorite_foods": {"type": "array", "items": {"type": "string"}, "minItems": 3, "maxItems": 3}
	  },
	  "required": ["diet", "favorite_foods"]
	}`

	sch, err := jsonschema.CompileString("test.json", schemaJSON)
	if err != nil {
		t.Fatalf("compile schema: %v", err)
	}

	Convey("Validate 严格校验结构化输出", t, func() {
		Convey("符合 schema 的负载通过", func() {
			payload := []byte(`{"diet": "vegan", "favorite_foods": ["tofu", "rice", "kale"]}`)
			So(Validate(sch, "test", payload), ShouldBeNil)
		})

		Convey("缺少必填字段被拒绝", func() {
			payload := []byte(`{"diet": "vegan"}`)
			err := Validate(sch, "test", payload)
			So(err, ShouldNotBeNil)
			So(err, ShouldHaveSameTypeAs, &SchemaError{})
		})

		Convey("枚举之外的值被拒绝", func() {
			payload := []byte(`{"diet": "carnivore", "favorite_foods": ["a", "b", "c"]}`)
			So(Validate(sch, "test", payload), ShouldNotBeNil)
		})

		Convey("多余字段被拒绝", func() {
			payload := []byte(`{"diet": "vegan", "favorite_foods": ["a", "b", "c"], "extra": 1}`)
			So(Validate(sch, "test", payload), ShouldNotBeNil)
		})

		Convey("元素个数不符被拒绝", func() {
			payload := []byte(`{"diet": "vegan", "favorite_foods": ["a", "b"]}`)
			So(Validate(sch, "test", payload), ShouldNotBeNil)
		})

		Convey("非法 JSON 被拒绝", func() {
			So(Validate(sch, "test", []byte(`{broken`)), ShouldNotBeNil)
		})
	})
}
