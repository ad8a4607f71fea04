// internal/prompt/prompt.go
// Package prompt 为各生成任务构建提示词。
//
// 所有函数均为纯函数：无副作用、无错误返回。输入为空只会产出一条
// 合法但无用的提示词，输入校验是调用方的责任。
package prompt

import (
	"fmt"
	"strings"

	"github.com/SteveJiangWorkPlace/Personal-Statement-Refine/internal/models"
)

// bannedVocabulary 翻译与精修阶段禁用的高频AI词汇
var bannedVocabulary = `   - master / mastery
   - my goal is to
   - permit
   - deep comprehension
   - look forward to
   - address
   - command
   - drawn to / draw
   - privilege
   - testament
   - commitment
   - tenure
   - thereby / thereby doing
   - cultivate
   - Building on this / Building on this foundation
   - intend to
   - demonstrate (use sparingly, avoid frequent appearance)`

// prohibitedStructures 禁用的语法结构
var prohibitedStructures = `   - **Adverbs**: Do not use adverbs (including adverbs as logical connectors).
   - **-ing forms as nouns**: Avoid using -ing forms as nouns (gerunds as subjects/objects).
   - **Adverb + verb/adjective structures**: Avoid combinations like "significantly improve" or "deeply understand".
   - **Main clause + , + -ing participial phrases**: Avoid structures like "I completed the project, demonstrating my skills".`

// BuildAnalysisPrompt 构建初始分析提示词：把旧PS适配到新的申请目标
// 输出必须遵守中英混合规则与 ===SECTION=== / [[LOGIC]] / [[DRAFT]] 格式，
// 解析器依赖这一输出契约
func BuildAnalysisPrompt(school, major, oldText, courseText string, hasImages bool, strategy string) string {
	imageInstruction := ""
	if hasImages {
		imageInstruction = "我同时也上传了课程设置的截图，请务必结合截图内容。"
	}

	strategyInstruction := ""
	if strings.TrimSpace(strategy) != "" {
		strategyInstruction = fmt.Sprintf(`
    【用户特别指令 (优先级最高)】
    %s
`, strategy)
	}

	return fmt.Sprintf(`
    你是一位专业的留学文书顾问。
    【任务目标】将用户的【旧个人陈述】适配到新的申请目标：**%s** 的 **%s** 专业。
    %s
    【输入材料】
    1. 旧 PS 内容：
    %s
    2. 新项目课程信息：
    %s
    %s

    【核心修改逻辑 (必须严格执行)】
    1. **结构与顺序 (尊重原文)**：
       - 请**顺应旧文书原本的段落结构和逻辑顺序**进行输出，不要强行打乱或重组。
       - **关键要求**：在处理每一段时，你必须在 `+"`[[LOGIC]]`"+` 中明确识别出**这一段的功能**。

    2. **针对"课程设置/择校理由"段落 (智能识别并深度重写)**：
       - 当你处理到**涉及学校、课程、Why School**的段落时，必须**完全重写**。
       - **筛选逻辑**：排除通用课程，只选与学生背景结合紧密的核心课。
       - **深度与具体化**：必须深入引用该课程模块中的**关键概念 (Key Concepts)** 或 **具体方法学**。

    3. **针对其他段落 (全篇适配与优化)**：
       - **范围覆盖**：开头动机、学习/实践经历、职业规划。
       - **适配新专业**：检查内容是否符合新专业逻辑。

    【⚠️⚠️⚠️ 绝对强制执行规则 (ABSOLUTE MANDATORY RULES) ⚠️⚠️⚠️】
    在生成 `+"`[[DRAFT]]`"+` 时，必须严格执行以下"中英混合"逻辑，这是最高优先级指令：
    1. **Unchanged Parts (未修改部分)**: MUST remain in **Original English**. Do NOT translate them into Chinese. 未修改部分必须保留原始英文。
    2. **Modified/New Parts (修改/新增部分)**: MUST be written in **CHINESE (中文)** directly without any brackets or parentheses. 所有修改或新增的部分必须直接用中文写出，不要用任何符号包裹。
       - Example: Original English text... 这里插入一句关于课程 A 的具体分析，强调它如何提升我的数据挖掘能力... more original English text.
    3. **Rewrite Sections (重写段落)**: If a whole paragraph (like Why School) is rewritten, output it **entirely in Chinese** without any brackets. 如果整段重写（如Why School段落），必须将整段内容直接用中文写出。

    【⚠️ 严格禁止】
    1. 不要在输出开头添加任何问候语或介绍语，如"作为一名专业的留学文书顾问..."
    2. 直接从第一段内容开始输出，不要有任何前言或开场白
    3. 所有修改过的内容必须用中文表达，不要直接输出英文修改
    4. 不要用英文输出任何修改内容，所有修改必须是中文
    5. 不要使用任何符号（如方括号[]、圆括号()等）来包裹中文内容，直接输出中文即可

    【输出格式示例】
    ===SECTION===
    [[LOGIC]]
    本段功能识别：[例如：学术背景]
    这里用中文解释修改思路...
    [[DRAFT]]
    Original English sentence here. 这里插入一句补充说明，强调量化能力. Another original English sentence.
    ===SECTION===
    ...

    请开始输出：
    `, school, major, strategyInstruction, oldText, courseText, imageInstruction)
}

// BuildRefinePrompt 构建批注修改提示词
// 模型需找到【】或[]包裹的指令、执行并去除标记，其余内容保持不变；
// 输出语言由调用方根据文本是否含中文显式指定
func BuildRefinePrompt(text string, hasChinese bool) string {
	outputLanguage := "ENGLISH"
	if hasChinese {
		outputLanguage = "CHINESE"
	}

	return fmt.Sprintf(`
    You are an expert editor. The user has provided a draft text below, but they have inserted **modification instructions** inside brackets `+"`【...】` or `[...]`"+`.
    **Your Task:**
    1. Read the text carefully.
    2. Identify the instructions inside `+"`【】` or `[]`"+` (e.g., "【把这段语气改得更自信一点】", "[make this more professional]").
    3. **Execute** these instructions to rewrite the text.
    4. **Remove** the instruction markers and the instruction text itself from the final output.
    5. Keep the rest of the text that was not targeted by instructions unchanged.
    6. Ensure the final output is smooth and coherent.

    **IMPORTANT OUTPUT LANGUAGE RULE:**
    - The text contains Chinese: %t
    - Your output MUST be in %s.
    - If the input contains Chinese text, keep using Chinese in your output.
    - If the input is entirely in English, respond in English.

    **Input Text:**
    %s
    **Output:**
    Output ONLY the refined text (no explanations).
    `, hasChinese, outputLanguage, text)
}

// BuildTranslatePrompt 构建翻译提示词：把中英混合段落翻译为纯英文
// 已是英文的部分保持原样，拼写规范由style决定
func BuildTranslatePrompt(text string, style models.TranslationStyle) string {
	spellingRule := "American Spelling (Color, Honor, Analyze)"
	if style == models.StyleUK {
		spellingRule = "British Spelling (Colour, Honour, Analyse)"
	}

	return fmt.Sprintf(`
    You are an expert Admissions Essay Translator.
    Task: Translate the hybrid Chinese-English paragraph into professional English.
    Spelling Convention: %s.
    Input (Hybrid Draft):
    %s
    CRITICAL RULES (MUST FOLLOW)
    1. **TRANSLATION EXECUTION**:
       - **MUST translate ALL Chinese text** into professional English following the rules below.
       - Any text inside brackets like `+"`(...)` or `【...】`"+` must be translated to English.
       - Merge translations smoothly with the existing English text.
       - **DO NOT use any Markdown formatting symbols** (no asterisks, bold, etc.)
       - Output clean text without any formatting marks.
       - Output ONLY the final English paragraph.
    2. **BANNED VOCABULARY (DO NOT USE)**:
%s
    3. **PROHIBITED STRUCTURES (ABSOLUTELY FORBIDDEN)**:
%s
    4. **SENTENCE STRUCTURE REQUIREMENTS**:
       - **Use subordinate clauses** to enhance logical connections. For example: "...which in turn leads to..." instead of "...this [verb]..."
       - **Use semicolons (;)** to connect complete but conceptually related sentences, not periods.
       - Ensure logical coherence and smooth flow.
    5. **PUNCTUATION STANDARDS**:
       - **Quotation marks**: Do NOT place commas or periods inside quotation marks. Place punctuation OUTSIDE quotation marks.
       - Example: Use "example", not "example,".
    6. **PROFESSIONAL WRITING STANDARDS**:
       - Use precise, professional terminology.
       - Avoid colloquial expressions.
       - Maintain formal academic tone appropriate for personal statements.
    7. **ORIGINAL ENGLISH PRESERVATION**:
       - Keep original English parts unchanged.
       - Apply all rules above only to newly translated parts (from Chinese to English).
    `, spellingRule, text, bannedVocabulary, prohibitedStructures)
}

// BuildEnglishRefinePrompt 构建英文精修提示词，用于翻译结果的批注修改
// 输出强制为纯英文，沿用翻译阶段的词汇与句式黑名单
func BuildEnglishRefinePrompt(text string) string {
	return fmt.Sprintf(`
    You are an expert academic editor specializing in personal statements for graduate school applications.

    **Your Task:**
    1. Read the English text carefully.
    2. Identify the instructions inside `+"`【】` or `[]`"+` (e.g., "[make this more professional]", "【improve this sentence】").
    3. **Execute** these instructions to improve the text.
    4. **Remove** the instruction markers and the instruction text itself from the final output.
    5. Keep the rest of the text that was not targeted by instructions unchanged.
    6. Ensure the final output is smooth, coherent, and maintains a professional academic tone.

    **CRITICAL RULES (MUST FOLLOW):**
    1. **OUTPUT FORMAT**:
       - Output MUST be in ENGLISH only.
       - **DO NOT use any Markdown formatting symbols** (no asterisks, bold, etc.)
       - Output clean text without any formatting marks.

    2. **BANNED VOCABULARY (DO NOT USE)**:
%s

    3. **PROHIBITED STRUCTURES (ABSOLUTELY FORBIDDEN)**:
%s

    4. **SENTENCE STRUCTURE REQUIREMENTS**:
       - **Use subordinate clauses** to enhance logical connections. For example: "...which in turn leads to..." instead of "...this [verb]..."
       - **Use semicolons (;)** to connect complete but conceptually related sentences, not periods.
       - Ensure logical coherence and smooth flow.

    5. **PUNCTUATION STANDARDS**:
       - **Quotation marks**: Do NOT place commas or periods inside quotation marks. Place punctuation OUTSIDE quotation marks.
       - Example: Use "example", not "example,".

    6. **PROFESSIONAL WRITING STANDARDS**:
       - Use precise, professional terminology.
       - Avoid colloquial expressions.
       - Maintain formal academic tone appropriate for personal statements.
       - Maintain the original meaning and intent of the text.

    **Input Text:**
    %s

    **Output:**
    Output ONLY the refined English text (no explanations, no formatting marks).
    `, bannedVocabulary, prohibitedStructures, text)
}

// BuildRemoveAIVocabPrompt 构建去AI词汇提示词
// 对任意输入文本去除黑名单词汇与句式，保持语言与原意，并剥除Markdown符号
func BuildRemoveAIVocabPrompt(text string) string {
	return fmt.Sprintf(`
你是一位专业的英文写作编辑，任务是去除个人陈述中的AI写作高频词汇和句式，使文本更加自然、个性化。

**绝对禁用的AI词汇和句式（黑名单）：**
A. 滥用的词汇和短语：
动词：
address (问题)
cultivate
Demonstrate（非严格禁用，需要少用，不要多次重复出现）
draw (特指 "draw from experience" 这类用法)
master
permit
leverage, utilize
名词和名词短语：
command (of a skill)
commitment
comprehension (尤其是 deep comprehension)
Master/mastery
privilege
tenure
testament
陈腐短语：
Building on this... / Building on this foundation
drawn to
look forward to
my goal is to
intend to
B. 滥用的结构和比喻：
副词+动词/形容词结构：避免过度使用"显著提升"、"深入理解"这类组合。
公式化因果：禁用 By doing X, I was able to Y 和 ...thereby doing... 的句式。
陈腐的比喻：
"旅程"隐喻 (e.g., academic/career journey)
"工具箱"隐喻 (e.g., skill set/toolkit)
"交汇点"逻辑 (e.g., the intersection of X and Y)

C. **Sentence Structure Variety (Balanced Rule)**: AI models often overuse the "comma + verb-ing" structure (e.g., ", revealing trends"). Do not strictly ban it, as it is valid in academic English, but **use it sparingly** to avoid a repetitive "AI tone." Instead, prioritize variety by using relative clauses (e.g., ", which revealed..."), coordination (e.g., "and revealed..."), or starting new sentences where appropriate for better flow.

**重要规则：**
7. **IMPORTANT - Remove Markdown**: Remove all Markdown formatting symbols like asterisks (*), double asterisks (**), underscores (_), etc. from the output. Provide clean text without any Markdown formatting.
8. **Punctuation with Quotation Marks**: For general text (not formal citations), always place commas, periods, and other punctuation marks OUTSIDE of quotation marks, not inside. For example, use "example", not "example,". For formal citations, maintain the original citation style's punctuation rules.

**你的任务：**
1. 仔细阅读以下文本。
2. 识别并移除所有黑名单中的词汇和短语。
3. 改写包含禁用句式的句子，保持原意但使用更自然的表达。
4. 去除任何陈腐的比喻和公式化结构。
5. 使文本更加个性化、生动，避免AI生成的痕迹。
6. 保持文本的专业性和学术性。
7. **不要添加任何额外解释**，只输出修改后的文本。

**重要规则：**
- 只修改确实属于黑名单的内容，如果没有问题，不要随意修改。
- 保留文本的原始含义和逻辑。
- 输出语言与输入语言一致（英文输入则英文输出，中文输入则中文输出）。

**输入文本：**
%s

**输出：**
只输出修改后的文本，不要有任何前言或说明。
`, text)
}

// ContainsChinese 判断文本是否包含中文字符
func ContainsChinese(text string) bool {
	for _, r := range text {
		if r >= 0x4e00 && r <= 0x9fff {
			return true
		}
	}
	return false
}

// ContainsAnnotation 判断文本是否包含成对的【】或[]批注标记
func ContainsAnnotation(text string) bool {
	if strings.Contains(text, "【") && strings.Contains(text, "】") {
		return true
	}
	return strings.Contains(text, "[") && strings.Contains(text, "]")
}
