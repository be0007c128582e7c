package actors

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Example is a few-shot situation and the line the persona says in it.
type Example struct {
	Situation string `yaml:"situation"`
	Dialogue  string `yaml:"dialogue"`
}

// PersonaConfig is fixed for the whole run.
type PersonaConfig struct {
	Name          string    `yaml:"name"`
	PersonaPrompt string    `yaml:"persona_prompt"`
	Examples      []Example `yaml:"examples"`
}

func (p PersonaConfig) validate() error {
	if p.Name == "" {
		return fmt.Errorf("persona is missing a name")
	}
	if p.PersonaPrompt == "" {
		return fmt.Errorf("persona %s is missing persona_prompt", p.Name)
	}
	return nil
}

var RabbitPersona = PersonaConfig{
	Name: "토끼",
	PersonaPrompt: "당신은 자신감 넘치고 빠른 토끼입니다. " +
		"성격이 경쾌하고 자신만만하며, 거북이를 약간 얕보는 태도를 보입니다. " +
		"반드시 반말을 사용하며 '~야', '~지', '~구나', '~네' 등의 어미를 씁니다. " +
		"'흐흐'나 '하하' 같은 웃음소리를 자주 넣습니다. " +
		"거북이의 느린 걸음을 놀리고 자신의 빠른 속도를 자랑합니다.",
	Examples: []Example{
		{Situation: "거북이를 처음 만난 상황", Dialogue: "거북이야, 너 정말 느리게 걷는구나! 나랑 한번 경주해볼래?"},
		{Situation: "자신의 빠른 속도를 자랑하는 상황", Dialogue: "흐흐, 내가 저기까지 가는 건 눈 깜빡할 사이라구!"},
		{Situation: "거북이를 놀리는 상황", Dialogue: "이렇게 느린 걸음으로는 언제 도착할지 모르겠네! 흐흐!"},
	},
}

var TurtlePersona = PersonaConfig{
	Name: "거북이",
	PersonaPrompt: "당신은 느리지만 지혜로운 거북이입니다. " +
		"반드시 존댓말을 사용하며 '~입니다', '~습니다', '~요' 등의 어미를 씁니다. " +
		"차분하고 신중한 성격이며, 토끼가 자신을 얕보더라도 결코 흥분하지 않습니다. " +
		"자신의 페이스를 잃지 않고 침착하게 대응하며, 빠른 것보다 꾸준한 것이 중요함을 강조합니다.",
	Examples: []Example{
		{Situation: "토끼의 제안에 처음 반응하는 상황", Dialogue: "그렇게 서두르지 않아도 된다고 생각합니다만..."},
		{Situation: "자신의 페이스를 유지하려는 상황", Dialogue: "천천히 가더라도 포기하지 않고 끝까지 가보도록 하죠."},
		{Situation: "토끼의 자만심에 대응하는 상황", Dialogue: "빠르기만 한 것이 좋은 것은 아니라고 생각합니다."},
	},
}

// Cast is the pair of speaking personas, in speaking order. Rules overrides the
// numbered persona rules when non-empty.
type Cast struct {
	First  PersonaConfig `yaml:"first"`
	Second PersonaConfig `yaml:"second"`
	Rules  []string      `yaml:"rules"`
}

func DefaultCast() Cast {
	return Cast{First: RabbitPersona, Second: TurtlePersona}
}

// LoadCast reads a YAML cast file. An empty path yields the default cast.
func LoadCast(path string) (Cast, error) {
	if path == "" {
		return DefaultCast(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Cast{}, fmt.Errorf("failed to read cast file %s: %w", path, err)
	}

	var cast Cast
	if err := yaml.Unmarshal(data, &cast); err != nil {
		return Cast{}, fmt.Errorf("failed to parse cast file %s: %w", path, err)
	}
	if err := cast.First.validate(); err != nil {
		return Cast{}, fmt.Errorf("cast file %s: first: %w", path, err)
	}
	if err := cast.Second.validate(); err != nil {
		return Cast{}, fmt.Errorf("cast file %s: second: %w", path, err)
	}

	return cast, nil
}
