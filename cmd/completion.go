package cmd

import (
	"fmt"
	"os"
)

// Completion outputs shell completion scripts
func Completion(shell string) {
	switch shell {
	case "bash":
		fmt.Print(bashCompletion)
	case "zsh":
		fmt.Print(zshCompletion)
	case "fish":
		fmt.Print(fishCompletion)
	default:
		fmt.Fprintf(os.Stderr, "Unknown shell: %s\nSupported: bash, zsh, fish\n", shell)
		os.Exit(1)
	}
}

const bashCompletion = `_chatvault() {
    local cur prev words cword
    _init_completion || return

    local commands="add ls rm models use chat test history clear export import diff reset theme report status events compact completion help"

    if [[ $cword -eq 1 ]]; then
        COMPREPLY=($(compgen -W "$commands" -- "$cur"))
        return
    fi

    local cmd="${words[1]}"
    case "$cmd" in
        add)
            COMPREPLY=($(compgen -W "--name --url --description" -- "$cur"))
            ;;
        rm|test)
            if [[ "$cur" == -* ]]; then
                COMPREPLY=($(compgen -W "--force" -- "$cur"))
            else
                local ids
                ids=$(chatvault ls 2>/dev/null | awk '/^  [●○]/ {print $2}')
                COMPREPLY=($(compgen -W "$ids" -- "$cur"))
            fi
            ;;
        history)
            COMPREPLY=($(compgen -W "-n" -- "$cur"))
            ;;
        clear|reset)
            COMPREPLY=($(compgen -W "--force" -- "$cur"))
            ;;
        import)
            if [[ "$cur" == -* ]]; then
                COMPREPLY=($(compgen -W "--force" -- "$cur"))
            else
                _filedir json
            fi
            ;;
        export|diff)
            _filedir json
            ;;
        theme)
            COMPREPLY=($(compgen -W "light dark blue purple" -- "$cur"))
            ;;
        report)
            COMPREPLY=($(compgen -W "--json" -- "$cur"))
            ;;
        help)
            COMPREPLY=($(compgen -W "$commands" -- "$cur"))
            ;;
        completion)
            COMPREPLY=($(compgen -W "bash zsh fish" -- "$cur"))
            ;;
    esac
}

complete -F _chatvault chatvault
`

const zshCompletion = `#compdef chatvault

_chatvault() {
    local -a commands
    commands=(
        'add:Register an API key'
        'ls:List registered APIs'
        'rm:Remove registered APIs'
        'models:List available models'
        'use:Select the model to chat with'
        'chat:Send a message to the selected model'
        'test:Test API connections'
        'history:Show the conversation'
        'clear:Delete the conversation'
        'export:Export data with masked keys'
        'import:Import data from an export file'
        'diff:Compare an export file with stored data'
        'reset:Delete all data and the key'
        'theme:Show or set the theme'
        'report:Summarize stored data'
        'status:Show store status'
        'events:Show security events'
        'compact:Compact the store'
        'completion:Generate shell completions'
        'help:Show help for a command'
    )

    _arguments -C \
        '1:command:->command' \
        '*::arg:->args'

    case $state in
        command)
            _describe 'command' commands
            ;;
        args)
            case $words[1] in
                add)
                    _arguments \
                        '--name[Display name]:name:' \
                        '--url[API base URL]:url:' \
                        '--description[Description]:description:'
                    ;;
                rm|clear|reset)
                    _arguments '--force[Do not ask for confirmation]' '*:id:'
                    ;;
                import)
                    _arguments '--force[Do not ask for confirmation]' '1:file:_files -g "*.json"'
                    ;;
                export|diff)
                    _files -g '*.json'
                    ;;
                theme)
                    _values 'theme' light dark blue purple
                    ;;
                report)
                    _arguments '--json[Print JSON]'
                    ;;
                help)
                    _describe 'command' commands
                    ;;
                completion)
                    _values 'shell' bash zsh fish
                    ;;
            esac
            ;;
    esac
}

_chatvault "$@"
`

const fishCompletion = `# chatvault completions for fish

set -l commands add ls rm models use chat test history clear export import diff reset theme report status events compact completion help

complete -c chatvault -f
complete -c chatvault -n "not __fish_seen_subcommand_from $commands" -a add -d 'Register an API key'
complete -c chatvault -n "not __fish_seen_subcommand_from $commands" -a ls -d 'List registered APIs'
complete -c chatvault -n "not __fish_seen_subcommand_from $commands" -a rm -d 'Remove registered APIs'
complete -c chatvault -n "not __fish_seen_subcommand_from $commands" -a models -d 'List available models'
complete -c chatvault -n "not __fish_seen_subcommand_from $commands" -a use -d 'Select the model to chat with'
complete -c chatvault -n "not __fish_seen_subcommand_from $commands" -a chat -d 'Send a message to the selected model'
complete -c chatvault -n "not __fish_seen_subcommand_from $commands" -a test -d 'Test API connections'
complete -c chatvault -n "not __fish_seen_subcommand_from $commands" -a history -d 'Show the conversation'
complete -c chatvault -n "not __fish_seen_subcommand_from $commands" -a clear -d 'Delete the conversation'
complete -c chatvault -n "not __fish_seen_subcommand_from $commands" -a export -d 'Export data with masked keys'
complete -c chatvault -n "not __fish_seen_subcommand_from $commands" -a import -d 'Import data from an export file'
complete -c chatvault -n "not __fish_seen_subcommand_from $commands" -a diff -d 'Compare an export file with stored data'
complete -c chatvault -n "not __fish_seen_subcommand_from $commands" -a reset -d 'Delete all data and the key'
complete -c chatvault -n "not __fish_seen_subcommand_from $commands" -a theme -d 'Show or set the theme'
complete -c chatvault -n "not __fish_seen_subcommand_from $commands" -a report -d 'Summarize stored data'
complete -c chatvault -n "not __fish_seen_subcommand_from $commands" -a status -d 'Show store status'
complete -c chatvault -n "not __fish_seen_subcommand_from $commands" -a events -d 'Show security events'
complete -c chatvault -n "not __fish_seen_subcommand_from $commands" -a compact -d 'Compact the store'
complete -c chatvault -n "not __fish_seen_subcommand_from $commands" -a completion -d 'Generate shell completions'
complete -c chatvault -n "not __fish_seen_subcommand_from $commands" -a help -d 'Show help for a command'

complete -c chatvault -n "__fish_seen_subcommand_from add" -l name -d 'Display name' -r
complete -c chatvault -n "__fish_seen_subcommand_from add" -l url -d 'API base URL' -r
complete -c chatvault -n "__fish_seen_subcommand_from add" -l description -d 'Description' -r
complete -c chatvault -n "__fish_seen_subcommand_from rm clear reset import" -l force -d 'Do not ask for confirmation'
complete -c chatvault -n "__fish_seen_subcommand_from report" -l json -d 'Print JSON'
complete -c chatvault -n "__fish_seen_subcommand_from import export diff" -F
complete -c chatvault -n "__fish_seen_subcommand_from theme" -a 'light dark blue purple'
complete -c chatvault -n "__fish_seen_subcommand_from help" -a "$commands"
complete -c chatvault -n "__fish_seen_subcommand_from completion" -a 'bash zsh fish'
`
